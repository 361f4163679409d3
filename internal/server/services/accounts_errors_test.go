package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeAccountsRepo struct {
	getOut *models.Account
	getErr error

	createErr error
	updateErr error

	created []*models.Account
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.ID = "42"
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeAccountsRepo) get() (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	cp := *f.getOut
	return &cp, nil
}

func (f *fakeAccountsRepo) GetByID(context.Context, string) (*models.Account, error) { return f.get() }
func (f *fakeAccountsRepo) GetByEmail(context.Context, string) (*models.Account, error) {
	return f.get()
}
func (f *fakeAccountsRepo) GetByEmailAndVerificationKey(context.Context, string, string) (*models.Account, error) {
	return f.get()
}
func (f *fakeAccountsRepo) GetByEmailAndPasswordResetKey(context.Context, string, string) (*models.Account, error) {
	return f.get()
}
func (f *fakeAccountsRepo) Update(context.Context, *models.Account) error { return f.updateErr }

type fakeRepoManager struct {
	a *fakeAccountsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository    { return m.a }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newFakeService(t *testing.T, db *sql.DB, repo *fakeAccountsRepo) (*AccountService, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	return NewAccountService(db, &fakeRepoManager{a: repo}, n, testConfig(), logging.Nop{}), n
}

func TestRegister_StoreErrors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	in := models.RegisterInput{Name: "Alice", Email: "alice@x.com", Password: "pw"}

	s, _ := newFakeService(t, db, &fakeAccountsRepo{getErr: errBoom{}})
	require.ErrorIs(t, s.Register(context.Background(), in), common.ErrorInternal)

	s, _ = newFakeService(t, db, &fakeAccountsRepo{getErr: common.ErrorNotFound, createErr: errBoom{}})
	require.ErrorIs(t, s.Register(context.Background(), in), common.ErrorInternal)

	// unique index wins the race the lookup missed
	s, n := newFakeService(t, db, &fakeAccountsRepo{getErr: common.ErrorNotFound, createErr: common.ErrorAlreadyExists})
	require.ErrorIs(t, s.Register(context.Background(), in), common.ErrDuplicateAccount)
	assert.Empty(t, n.sent())
}

func TestRegister_KeyGenerationFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeAccountsRepo{getErr: common.ErrorNotFound}
	s, _ := newFakeService(t, db, repo)
	s.generateKey = func() (string, error) { return "", errBoom{} }

	err := s.Register(context.Background(), models.RegisterInput{Name: "Alice", Email: "alice@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, repo.created)
}

func TestRegister_InternalErrorIsOpaque(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newFakeService(t, db, &fakeAccountsRepo{getErr: errors.New("dial tcp 10.0.0.5:5432: connection refused")})
	err := s.Register(context.Background(), models.RegisterInput{Name: "Alice", Email: "alice@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.NotContains(t, err.Error(), "10.0.0.5")
}

func TestLogin_StoreErrorAndBadHash(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	in := models.LoginInput{Email: "alice@x.com", Password: "pw"}

	s, _ := newFakeService(t, db, &fakeAccountsRepo{getErr: errBoom{}})
	_, err := s.Login(context.Background(), in)
	require.ErrorIs(t, err, common.ErrorInternal)

	s, _ = newFakeService(t, db, &fakeAccountsRepo{getOut: &models.Account{ID: "1", PasswordHash: "garbage"}})
	_, err = s.Login(context.Background(), in)
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestProfile_StoreError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newFakeService(t, db, &fakeAccountsRepo{getErr: errBoom{}})
	_, err := s.Profile(context.Background(), "1")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestVerify_Transaction(t *testing.T) {
	in := models.KeyInput{Email: "alice@x.com", Key: "abc"}

	t.Run("commit", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectCommit()

		s, _ := newFakeService(t, db, &fakeAccountsRepo{getOut: &models.Account{ID: "1", VerificationKey: "abc"}})
		require.NoError(t, s.Verify(context.Background(), in))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match rolls back", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		s, _ := newFakeService(t, db, &fakeAccountsRepo{getErr: common.ErrorNotFound})
		require.ErrorIs(t, s.Verify(context.Background(), in), common.ErrInvalidVerification)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update error rolls back", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		s, _ := newFakeService(t, db, &fakeAccountsRepo{
			getOut:    &models.Account{ID: "1", VerificationKey: "abc"},
			updateErr: errBoom{},
		})
		require.ErrorIs(t, s.Verify(context.Background(), in), common.ErrorInternal)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		defer db.Close()
		mock.ExpectBegin().WillReturnError(errBoom{})

		s, _ := newFakeService(t, db, &fakeAccountsRepo{})
		require.ErrorIs(t, s.Verify(context.Background(), in), common.ErrorInternal)
	})
}

func TestResetPassword_StoreErrors(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s, n := newFakeService(t, db, &fakeAccountsRepo{getOut: &models.Account{ID: "1", Email: "alice@x.com"}, updateErr: errBoom{}})
	require.ErrorIs(t, s.ResetPassword(context.Background(), models.EmailInput{Email: "alice@x.com"}), common.ErrorInternal)
	assert.Empty(t, n.sent())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordVerify_StoreError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newFakeService(t, db, &fakeAccountsRepo{getErr: errBoom{}})
	err := s.ResetPasswordVerify(context.Background(), models.KeyInput{Email: "alice@x.com", Key: "abc"})
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestResetPasswordSubmit_CommitError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errBoom{})

	s, _ := newFakeService(t, db, &fakeAccountsRepo{getOut: &models.Account{ID: "1", PasswordResetKey: "abc"}})
	err := s.ResetPasswordSubmit(context.Background(), models.ResetSubmitInput{Email: "alice@x.com", Key: "abc", Password: "new"})
	require.ErrorIs(t, err, common.ErrorInternal)
}
