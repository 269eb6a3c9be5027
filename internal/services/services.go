// This file holds the small pieces shared by every service: who is calling, how
// notifications leave the service layer, and the date/time formats requests use.

package services

import (
	"errors"
	"time"
)

// Caller identifies the authenticated player making a request.
// The auth middleware loads it from the session token on every request.
type Caller struct {
	ID      int64
	IsAdmin bool
}

// CanActFor reports whether the caller may act on resources owned by playerID:
// either it is their own resource or the caller is an admin.
func (c Caller) CanActFor(playerID int64) bool {
	return c.ID == playerID || c.IsAdmin
}

// Notifier delivers real-time notifications to a player's open streams.
// *notify.Hub implements it.
type Notifier interface {
	Notify(playerID int64, kind string, payload any)
}

// nopNotifier drops every notification. Services use it when no hub is configured,
// so they can call Notify unconditionally.
type nopNotifier struct{}

func (nopNotifier) Notify(int64, string, any) {}

// orNop returns n, or a nopNotifier when n is nil.
func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// dateLayout and timeLayout are the accepted formats for calendar dates and kick-off times.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// validDate reports whether s is a real calendar date in "YYYY-MM-DD" form.
// time.Parse rejects impossible dates like 2026-02-30 as well as bad formats.
func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// validTime reports whether s is a 24-hour "HH:MM" time.
func validTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil
}

// fail passes a *Error through unchanged and wraps anything else as internal.
// It is used on errors returned from db.Transaction, whose callback may return either.
func fail(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internal(op, err)
}
