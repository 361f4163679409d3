package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const pgSelectAccount = `SELECT id, name, email, password_hash, verified, verification_key, password_reset_key, created_at FROM accounts`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (name, email, password_hash, verified, verification_key, password_reset_key)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.Email, account.PasswordHash, account.Verified,
		nullIfEmpty(account.VerificationKey), nullIfEmpty(account.PasswordResetKey),
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, pgSelectAccount+` WHERE id::text = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, pgSelectAccount+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByEmailAndVerificationKey(ctx context.Context, email, key string) (*models.Account, error) {
	if key == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, pgSelectAccount+` WHERE email = $1 AND verification_key = $2`, email, key)
}

func (r *PostgresRepository) GetByEmailAndPasswordResetKey(ctx context.Context, email, key string) (*models.Account, error) {
	if key == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, pgSelectAccount+` WHERE email = $1 AND password_reset_key = $2`, email, key)
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts
		 SET name = $2, email = $3, password_hash = $4, verified = $5,
		     verification_key = $6, password_reset_key = $7
		 WHERE id::text = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash, account.Verified,
		nullIfEmpty(account.VerificationKey), nullIfEmpty(account.PasswordResetKey),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return checkAffected(res)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	row := &accountRow{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&row.account.ID, &row.account.Name, &row.account.Email, &row.account.PasswordHash,
		&row.account.Verified, &row.verificationKey, &row.passwordResetKey, &row.account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return row.finish(), nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
