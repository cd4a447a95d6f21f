package domain

import "time"

// Otp is a one-time code bound to an email address. At most one live
// row exists per email; a row is live while ExpiresAt is in the future.
type Otp struct {
	ID        string
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}
