package models

import "time"

// Account is the persisted identity and credential record of a user.
// Empty VerificationKey / PasswordResetKey mean no key is outstanding.
type Account struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Verified         bool
	VerificationKey  string
	PasswordResetKey string
	CreatedAt        time.Time
}

// Profile is the client-facing view of an Account. It never carries the
// password hash or any outstanding key.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the public view of a.
func (a *Account) Profile() *Profile {
	return &Profile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	}
}
