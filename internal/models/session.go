package models

// UserRef is the read-only copy of the remote service's user identity.
type UserRef struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials is the success body of the login and register endpoints.
type Credentials struct {
	Token string  `json:"token"`
	User  UserRef `json:"user"`
}
