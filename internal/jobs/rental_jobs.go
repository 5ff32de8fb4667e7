package jobs

import (
	"context"
	"time"

	"filmrental-backend/internal/logger"
)

const overdueReminderTimeout = 10 * time.Minute

// SendOverdueReminders emails every customer holding a rental past its return date
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), overdueReminderTimeout)
		defer cancel()

		sent, err := jr.services.Rental.NotifyOverdueRentals(ctx)
		if err != nil {
			logger.Error("Failed to send overdue reminders", "sent", sent, "error", err)
			return
		}
		logger.Info("Sent overdue reminders", "count", sent)
	})
}
