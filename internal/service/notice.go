package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/utils"
)

// overdueNotice is the content of a late-return reminder.
type overdueNotice struct {
	Subject string
	Text    string
	HTML    string
}

func newOverdueNotice(customer *domain.Customer, rental *domain.Rental, today time.Time) overdueNotice {
	titles := make([]string, 0, len(rental.Films))
	for _, f := range rental.Films {
		titles = append(titles, f.Title)
	}
	due := rental.ReturnDate.Format("Monday, 2 January 2006")
	daysLate := utils.DaysBetween(rental.ReturnDate, today)

	text := fmt.Sprintf(`Dear %s,

This is a reminder that your rental %s was due back on %s and is now %d day(s) overdue.

Films:
  - %s

Please return them as soon as possible.

Thank you,
The Film Rental Team`, customer.Name, rental.ID, due, daysLate, strings.Join(titles, "\n  - "))

	var items strings.Builder
	for _, t := range titles {
		items.WriteString("<li>" + html.EscapeString(t) + "</li>")
	}
	htmlBody := fmt.Sprintf(`<html>
	<body>
		<p>Dear %s,</p>
		<p>Your rental was due back on <strong>%s</strong> and is now %d day(s) overdue.</p>
		<ul>%s</ul>
		<p>Please return the films as soon as possible.</p>
	</body>
</html>`, html.EscapeString(customer.Name), due, daysLate, items.String())

	return overdueNotice{
		Subject: "Reminder: Overdue Film Return",
		Text:    text,
		HTML:    htmlBody,
	}
}
