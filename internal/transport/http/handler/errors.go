package handler

const (
	errInternalServer    = "Internal server error"
	errUserExists        = "User already exists"
	errUserNotFound      = "User doesn't exist"
	errDeliveryFailed    = "Error while sending OTP email"
	errAlreadyConfirmed  = "User already confirmed"
	errOtpExpired        = "OTP expired, get a new one"
	errOtpInvalid        = "OTP is invalid, get a new one"
	errOtpRateLimited    = "You can't request a new OTP yet, wait some time"
	errWrongCredentials  = "Wrong sign in credentials"
	errNotConfirmed      = "Please confirm your email first"
	errDuplicateContact  = "Email or mobile number are duplicated"
	errPasswordIncorrect = "Password is incorrect"
)
