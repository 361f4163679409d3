// Package validation checks operation inputs before any store access.
// Every failure is an *Error, which matches common.ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// Error lists the failed fields keyed by their JSON name.
type Error struct {
	Fields validation.Errors
}

func (e *Error) Error() string {
	return "validation error: " + e.Fields.Error()
}

func (e *Error) Unwrap() error {
	return common.ErrValidation
}

// FieldError is one failed field.
type FieldError struct {
	Field   string
	Message string
}

// Details returns the failed fields ordered by name.
func (e *Error) Details() []FieldError {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]FieldError, 0, len(keys))
	for _, k := range keys {
		out = append(out, FieldError{Field: k, Message: e.Fields[k].Error()})
	}
	return out
}

var (
	nameRules     = []validation.Rule{validation.Required, validation.Length(1, 200)}
	emailRules    = []validation.Rule{validation.Required, validation.Length(3, 254), is.Email}
	passwordRules = []validation.Rule{validation.Required, validation.By(maxBytes(maxPasswordBytes))}
	keyRules      = []validation.Rule{validation.Required, validation.Length(1, 128), is.Alphanumeric}
)

func ValidateRegister(in *models.RegisterInput) error {
	return wrap(validation.ValidateStruct(in,
		validation.Field(&in.Name, nameRules...),
		validation.Field(&in.Email, emailRules...),
		validation.Field(&in.Password, passwordRules...),
	))
}

func ValidateLogin(in *models.LoginInput) error {
	return wrap(validation.ValidateStruct(in,
		validation.Field(&in.Email, emailRules...),
		validation.Field(&in.Password, passwordRules...),
	))
}

func ValidateKey(in *models.KeyInput) error {
	return wrap(validation.ValidateStruct(in,
		validation.Field(&in.Email, emailRules...),
		validation.Field(&in.Key, keyRules...),
	))
}

func ValidateEmail(in *models.EmailInput) error {
	return wrap(validation.ValidateStruct(in,
		validation.Field(&in.Email, emailRules...),
	))
}

func ValidateResetSubmit(in *models.ResetSubmitInput) error {
	return wrap(validation.ValidateStruct(in,
		validation.Field(&in.Email, emailRules...),
		validation.Field(&in.Key, keyRules...),
		validation.Field(&in.Password, passwordRules...),
	))
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &Error{Fields: fields}
	}
	// misconfigured rules, not a client mistake
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

func maxBytes(n int) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if len(s) > n {
			return fmt.Errorf("must be at most %d bytes long", n)
		}
		return nil
	}
}
