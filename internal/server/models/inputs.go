package models

// Inputs of the account operations, as received from clients.

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// KeyInput pairs an email with a verification or password-reset key.
type KeyInput struct {
	Email string `json:"email"`
	Key   string `json:"key"`
}

type EmailInput struct {
	Email string `json:"email"`
}

type ResetSubmitInput struct {
	Email    string `json:"email"`
	Key      string `json:"key"`
	Password string `json:"password"`
}
