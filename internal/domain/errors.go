package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. RentalError values match these through errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrEmptyFilmList       = errors.New("empty film list")
	ErrOutOfStock          = errors.New("film out of stock")
	ErrEmptyCustomer       = errors.New("empty customer")
	ErrCustomerBlacklisted = errors.New("customer is blacklisted")
	ErrAlreadyReturned     = errors.New("rental already returned")
)

// ErrorKind classifies a rejected rental operation.
type ErrorKind string

const (
	KindEmptyFilmList       ErrorKind = "empty_film_list"
	KindOutOfStock          ErrorKind = "out_of_stock"
	KindEmptyCustomer       ErrorKind = "empty_customer"
	KindCustomerBlacklisted ErrorKind = "customer_blacklisted"
	KindAlreadyReturned     ErrorKind = "already_returned"
)

var kindSentinels = map[ErrorKind]error{
	KindEmptyFilmList:       ErrEmptyFilmList,
	KindOutOfStock:          ErrOutOfStock,
	KindEmptyCustomer:       ErrEmptyCustomer,
	KindCustomerBlacklisted: ErrCustomerBlacklisted,
	KindAlreadyReturned:     ErrAlreadyReturned,
}

// RentalError is returned when a rental operation is rejected by a business rule.
type RentalError struct {
	Kind ErrorKind
	// FilmID and FilmTitle identify the offending film for KindOutOfStock.
	FilmID    int32
	FilmTitle string
	// Position is the 1-based position of the offending film in the request.
	Position int
}

func NewRentalError(kind ErrorKind) *RentalError {
	return &RentalError{Kind: kind}
}

func NewOutOfStockError(film Film, position int) *RentalError {
	return &RentalError{
		Kind:      KindOutOfStock,
		FilmID:    film.ID,
		FilmTitle: film.Title,
		Position:  position,
	}
}

func (e *RentalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Unwrap().Error()
	if e.Kind == KindOutOfStock {
		msg += fmt.Sprintf(" (film_id=%d, title=%q, position=%d)", e.FilmID, e.FilmTitle, e.Position)
	}
	return msg
}

func (e *RentalError) Unwrap() error {
	if e == nil {
		return nil
	}
	if s, ok := kindSentinels[e.Kind]; ok {
		return s
	}
	return fmt.Errorf("rental error: %s", e.Kind)
}

// IsKind helps callers classify errors without depending on the service package.
func IsKind(err error, kind ErrorKind) bool {
	var re *RentalError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// KindOf returns the kind of a RentalError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var re *RentalError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
