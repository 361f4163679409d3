// Package accounts is the Account Store: durable storage of account records
// keyed by id and by unique email.
package accounts

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

// Repository is implemented for every supported database dialect.
//
// Lookups return common.ErrorNotFound when nothing matches and Create returns
// common.ErrorAlreadyExists when the email is taken. Key lookups never match
// an empty key.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByEmailAndVerificationKey(ctx context.Context, email, key string) (*models.Account, error)
	GetByEmailAndPasswordResetKey(ctx context.Context, email, key string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}

// accountRow holds the nullable columns while scanning.
type accountRow struct {
	account          models.Account
	verificationKey  sql.NullString
	passwordResetKey sql.NullString
}

func (r *accountRow) finish() *models.Account {
	a := r.account
	a.VerificationKey = r.verificationKey.String
	a.PasswordResetKey = r.passwordResetKey.String
	return &a
}

// nullIfEmpty stores empty keys as NULL so they can never be matched.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
