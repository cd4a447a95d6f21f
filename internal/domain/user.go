package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleCompanyHR Role = "company_hr"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleCompanyHR
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// User is a job-board account. Email, mobile number and username are
// unique across all accounts; the store enforces that.
type User struct {
	ID            string
	FirstName     string
	LastName      string
	Username      string
	Email         string
	PasswordHash  string
	RecoveryEmail string
	DOB           time.Time
	MobileNumber  string
	Role          Role
	Status        Status
	Confirmed     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identity is what a verified session token asserts about the caller.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}
