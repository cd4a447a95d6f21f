package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("email or mobile number already registered")
	ErrInvalidCredentials = errors.New("wrong sign in credentials")
	ErrNotConfirmed       = errors.New("email is not confirmed")
	ErrAlreadyConfirmed   = errors.New("email is already confirmed")
	ErrOtpExpired         = errors.New("otp expired")
	ErrOtpInvalid         = errors.New("otp is invalid")
	ErrOtpAlreadyIssued   = errors.New("a live otp already exists for this email")
	ErrDeliveryFailed     = errors.New("otp email delivery failed")
)
