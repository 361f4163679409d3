package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSelectAccount = `SELECT id, name, email, password_hash, verified, verification_key, password_reset_key, created_at FROM accounts`

// SQLiteRepository stores accounts in SQLite. Timestamps are kept as UTC
// unix milliseconds.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	id := uuid.NewString()
	createdAt := time.UnixMilli(r.now().UTC().UnixMilli()).UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, verified, verification_key, password_reset_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, account.Name, account.Email, account.PasswordHash, account.Verified,
		nullIfEmpty(account.VerificationKey), nullIfEmpty(account.PasswordResetKey), createdAt.UnixMilli())
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	return account, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, sqliteSelectAccount+` WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, sqliteSelectAccount+` WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetByEmailAndVerificationKey(ctx context.Context, email, key string) (*models.Account, error) {
	if key == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, sqliteSelectAccount+` WHERE email = ? AND verification_key = ?`, email, key)
}

func (r *SQLiteRepository) GetByEmailAndPasswordResetKey(ctx context.Context, email, key string) (*models.Account, error) {
	if key == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, sqliteSelectAccount+` WHERE email = ? AND password_reset_key = ?`, email, key)
}

func (r *SQLiteRepository) Update(ctx context.Context, account *models.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, email = ?, password_hash = ?, verified = ?, verification_key = ?, password_reset_key = ?
		WHERE id = ?
	`, account.Name, account.Email, account.PasswordHash, account.Verified,
		nullIfEmpty(account.VerificationKey), nullIfEmpty(account.PasswordResetKey), account.ID)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return checkAffected(res)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	row := &accountRow{}
	var createdAt int64

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&row.account.ID, &row.account.Name, &row.account.Email, &row.account.PasswordHash,
		&row.account.Verified, &row.verificationKey, &row.passwordResetKey, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	row.account.CreatedAt = time.UnixMilli(createdAt).UTC()
	return row.finish(), nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}

	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqlErr.Error(), "UNIQUE")
	}
	return false
}
