package domain

import "time"

// Account is a stored user account. Guests have IsGuest set and no
// credentials.
type Account struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string // argon2 encoded, empty for guests
	IsGuest      bool
	StableID     string // stable public identifier, used as preferred_username
	Signature    string
	FirstName    string
	MiddleName   string
	LastName     string
	Organization string
	Interests    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProperties are the editable fields of an account, as supplied when one
// is created.
type UserProperties struct {
	Email        string
	Username     string
	FirstName    string
	MiddleName   string
	LastName     string
	Organization string
	Interests    string
}

// UserAccountInfo is the profile an identity backend returns for a user.
// SupplementalFields are merged into tokens as-is, except for reserved claim
// names.
type UserAccountInfo struct {
	UserID             string
	IsGuest            bool
	Email              string
	EmailVerified      bool
	PreferredUsername  string
	Signature          string
	SupplementalFields map[string]any
}

// UserRecord is the summary returned by user queries.
type UserRecord struct {
	UserID       int64  `json:"userId"`
	Found        bool   `json:"found"`
	IsGuest      bool   `json:"isGuest,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
}
