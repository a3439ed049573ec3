package domain

import "strings"

// CurrentUser is the caller identity forwarded by the auth proxy.
// A zero value means an unauthenticated local caller.
type CurrentUser struct {
	Email string
	Name  string
}

// DisplayName picks the friendliest available label for the caller.
func (u CurrentUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return strings.SplitN(u.Email, "@", 2)[0]
	}
	return "Unknown"
}

// IsAuthenticated reports whether the caller carries an identity.
func (u CurrentUser) IsAuthenticated() bool {
	return u.Email != ""
}

// EmailPtr returns the email as a nullable field for persistence.
func (u CurrentUser) EmailPtr() *string {
	if u.Email == "" {
		return nil
	}
	e := u.Email
	return &e
}
