package authsdk

// ErrorResponse is the wire form of an OAuth2 error (RFC 6749 section 5.2).
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is returned by the token, bearer-token and guest-token
// endpoints.
type TokenResponse struct {
	// AccessToken is opaque for the code exchange and an ES512 JWT for
	// bearer and guest tokens.
	AccessToken string `json:"access_token" example:"3q2-7wEAAQ..."`

	// TokenType is always "bearer".
	TokenType string `json:"token_type" example:"bearer"`

	// ExpiresIn is the lifetime in seconds.
	ExpiresIn int64 `json:"expires_in" example:"3600"`

	// IDToken is the HS512 ID token, signed with the client secret. Only
	// set by the code exchange.
	IDToken string `json:"id_token,omitempty"`
}

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	Email        string `json:"email" example:"ada@example.org"`
	Username     string `json:"username,omitempty" example:"ada"`
	Password     string `json:"password,omitempty"`
	FirstName    string `json:"firstName" example:"Ada"`
	MiddleName   string `json:"middleName,omitempty"`
	LastName     string `json:"lastName" example:"Lovelace"`
	Organization string `json:"organization" example:"Analytical Engines"`
	Interests    string `json:"interests,omitempty"`
}

// ModifyUserRequest is the body of PUT /v1/users/{id}. It replaces the
// whole profile; an omitted username clears it.
type ModifyUserRequest struct {
	Email        string `json:"email" example:"ada@example.org"`
	Username     string `json:"username,omitempty" example:"ada"`
	FirstName    string `json:"firstName" example:"Ada"`
	MiddleName   string `json:"middleName,omitempty"`
	LastName     string `json:"lastName" example:"Lovelace"`
	Organization string `json:"organization" example:"Analytical Engines"`
	Interests    string `json:"interests,omitempty"`
}

// SetPasswordRequest is the body of POST /v1/users/password. Login is an
// email address or username.
type SetPasswordRequest struct {
	Login    string `json:"login" example:"ada"`
	Password string `json:"password,omitempty"`
}

// QueryUsersRequest is the body of POST /v1/users/query. Exactly one field
// must be set.
type QueryUsersRequest struct {
	UserID  *int64  `json:"userId,omitempty"`
	UserIDs []int64 `json:"userIds,omitempty"`
}

// UserRecord is the public summary of one account.
type UserRecord struct {
	UserID       int64  `json:"userId"`
	Found        bool   `json:"found"`
	IsGuest      bool   `json:"isGuest,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
}

type QueryUsersResponse struct {
	Users []UserRecord `json:"users"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Uptime  string `json:"uptime,omitempty" example:"1h23m45s"`
	Version string `json:"version,omitempty"`

	// Checks is only set by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Signer   string `json:"signer"`
}
