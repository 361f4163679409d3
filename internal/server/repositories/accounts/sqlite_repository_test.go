package accounts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/migrations"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.SQLite)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "sqlite"))

	return db
}

func newSQLiteRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db := newSQLiteDB(t)
	repo := NewSQLiteRepository(db)
	repo.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC) }
	return repo, db
}

func TestSQLite_CreateAndGet(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Account{
		Name: "Alice", Email: "alice@x.com", PasswordHash: "hash", VerificationKey: "vkey",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC), created.CreatedAt)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	byEmail, err := repo.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.False(t, byEmail.Verified)
	assert.Equal(t, "vkey", byEmail.VerificationKey)
	assert.Empty(t, byEmail.PasswordResetKey)
}

func TestSQLite_CreateDuplicateEmail(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Account{Name: "A", Email: "dup@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Account{Name: "B", Email: "dup@x.com", PasswordHash: "h2"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestSQLite_NotFound(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByEmail(ctx, "ghost@x.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_KeyLookups(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.Account{
		Name: "Alice", Email: "alice@x.com", PasswordHash: "hash",
		VerificationKey: "vkey", PasswordResetKey: "rkey",
	})
	require.NoError(t, err)

	got, err := repo.GetByEmailAndVerificationKey(ctx, "alice@x.com", "vkey")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = repo.GetByEmailAndPasswordResetKey(ctx, "alice@x.com", "rkey")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = repo.GetByEmailAndVerificationKey(ctx, "alice@x.com", "rkey")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByEmailAndPasswordResetKey(ctx, "bob@x.com", "rkey")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_ClearedKeyNeverMatches(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.Account{Name: "Alice", Email: "alice@x.com", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = repo.GetByEmailAndVerificationKey(ctx, a.Email, "")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.GetByEmailAndPasswordResetKey(ctx, a.Email, "")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_Update(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.Account{
		Name: "Alice", Email: "alice@x.com", PasswordHash: "hash", VerificationKey: "vkey",
	})
	require.NoError(t, err)

	a.Verified = true
	a.VerificationKey = ""
	a.PasswordResetKey = "rkey"
	require.NoError(t, repo.Update(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Empty(t, got.VerificationKey)
	assert.Equal(t, "rkey", got.PasswordResetKey)

	missing := *a
	missing.ID = "nope"
	require.ErrorIs(t, repo.Update(ctx, &missing), common.ErrorNotFound)
}

func TestSQLite_UpdateInsideTx(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.Account{Name: "Alice", Email: "alice@x.com", PasswordHash: "hash"})
	require.NoError(t, err)

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := NewSQLiteRepository(tx)
		acc, err := txRepo.GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		acc.Name = "Alice Cooper"
		return txRepo.Update(ctx, acc)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", got.Name)
}
