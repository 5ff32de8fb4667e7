package http

import (
	"time"

	"filmrental-backend/internal/domain"
)

const dateLayout = "2006-01-02"

type rentFilmsRequest struct {
	CustomerID int32   `json:"customer_id"`
	FilmIDs    []int32 `json:"film_ids"`
}

type filmResponse struct {
	ID          int32  `json:"id"`
	Title       string `json:"title"`
	RentalPrice string `json:"rental_price"`
}

type lineResponse struct {
	Position   int    `json:"position"`
	FilmID     int32  `json:"film_id"`
	UnitPrice  string `json:"unit_price"`
	Multiplier string `json:"multiplier"`
	Amount     string `json:"amount"`
}

type rentalResponse struct {
	ID           string         `json:"id"`
	CustomerID   int32          `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	Films        []filmResponse `json:"films"`
	Lines        []lineResponse `json:"lines"`
	TotalPrice   string         `json:"total_price"`
	RentalDate   string         `json:"rental_date"`
	ReturnDate   string         `json:"return_date"`
	ReturnedOn   string         `json:"returned_on,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func mapRentalToResponse(r *domain.Rental) rentalResponse {
	resp := rentalResponse{
		ID:         r.ID.String(),
		Films:      make([]filmResponse, 0, len(r.Films)),
		Lines:      make([]lineResponse, 0, len(r.Lines)),
		TotalPrice: r.TotalPrice.StringFixed(2),
		RentalDate: formatDate(r.RentalDate),
		ReturnDate: formatDate(r.ReturnDate),
	}
	if r.Customer != nil {
		resp.CustomerID = r.Customer.ID
		resp.CustomerName = r.Customer.Name
	}
	if r.ReturnedOn != nil {
		resp.ReturnedOn = formatDate(*r.ReturnedOn)
	}
	for _, f := range r.Films {
		resp.Films = append(resp.Films, filmResponse{
			ID:          f.ID,
			Title:       f.Title,
			RentalPrice: f.RentalPrice.StringFixed(2),
		})
	}
	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			Position:   l.Position,
			FilmID:     l.FilmID,
			UnitPrice:  l.UnitPrice.StringFixed(2),
			Multiplier: l.Multiplier.StringFixed(2),
			Amount:     l.Amount.StringFixed(2),
		})
	}
	return resp
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
