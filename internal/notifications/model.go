package notifications

import (
	"database/sql"
	"time"
)

const (
	TypeFittingReminder         = "FITTING_REMINDER"
	TypeReservationConfirmation = "RESERVATION_CONFIRMATION"
	TypeReturnAlert             = "RETURN_ALERT"
	TypeBirthday                = "BIRTHDAY"
	TypePaymentConfirmation     = "PAYMENT_CONFIRMATION"
	TypeGeneral                 = "GENERAL"
)

func validType(t string) bool {
	switch t {
	case TypeFittingReminder, TypeReservationConfirmation, TypeReturnAlert,
		TypeBirthday, TypePaymentConfirmation, TypeGeneral:
		return true
	}
	return false
}

// Notification is one row of the notifications table.
type Notification struct {
	NotificationID int64
	CustomerID     int64
	Type           string
	Title          string
	Message        string
	IsRead         bool
	SentAt         time.Time
	ReadAt         sql.NullTime
}
