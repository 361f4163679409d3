// Package services contains server-side business logic. This file implements
// AccountService, which owns the account lifecycle: registration with email
// verification, credential login, and the mailed password-reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/notifier"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccounts/internal/server/validation"
)

// AccountService provides the account operations:
// - Register, Verify: create accounts and confirm email ownership
// - Login, Profile: authenticate and read the public account view
// - ResetPassword, ResetPasswordVerify, ResetPasswordSubmit: mailed reset flow
type AccountService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	notifier      notifier.Notifier
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
	mailTimeout   time.Duration
	appBaseURL    string

	generateKey func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService constructs an AccountService using repositories, the
// outbound notifier and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, n notifier.Notifier, cfg *config.Config, l logging.Logger) *AccountService {
	return &AccountService{
		db:            db,
		repomanager:   m,
		notifier:      n,
		logger:        l,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		bcryptCost:    cfg.BcryptCost,
		mailTimeout:   cfg.MailTimeout,
		appBaseURL:    cfg.AppBaseURL,
		generateKey: func() (string, error) {
			return common.GenerateKey(common.KeyLength)
		},
	}
}

// Register creates an unverified account and mails its verification link.
// A failed delivery is reported as common.ErrNotifier; the account is kept.
func (s *AccountService) Register(ctx context.Context, in models.RegisterInput) error {
	if err := validation.ValidateRegister(&in); err != nil {
		return err
	}

	repo := s.repomanager.Accounts(s.db)

	_, err := repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return common.ErrDuplicateAccount
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return s.internal(ctx, "error searching account", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return s.internal(ctx, "error hashing password", err)
	}

	key, err := s.generateKey()
	if err != nil {
		return s.internal(ctx, "error generating verification key", err)
	}

	account, err := repo.Create(ctx, &models.Account{
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		VerificationKey: key,
	})
	if err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrDuplicateAccount
		}
		return s.internal(ctx, "error creating account", err)
	}

	msg, err := notifier.VerificationMessage(s.appBaseURL, account.Email, key)
	if err != nil {
		return s.internal(ctx, "error rendering verification mail", err)
	}
	return s.send(ctx, msg)
}

// Login checks credentials and returns a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, in models.LoginInput) (string, error) {
	if err := validation.ValidateLogin(&in); err != nil {
		return "", err
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same bcrypt time as for a real account
			_, _ = auth.ComparePassword(s.getDummyHash(), in.Password)
			return "", common.ErrInvalidCredentials
		}
		return "", s.internal(ctx, "error searching account", err)
	}

	ok, err := auth.ComparePassword(account.PasswordHash, in.Password)
	if err != nil {
		return "", s.internal(ctx, "error comparing password", err)
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(account.ID, account.Verified, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", s.internal(ctx, "error signing token", err)
	}
	return token, nil
}

// Profile returns the public view of the account with the given id.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*models.Profile, error) {
	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, s.internal(ctx, "error searching account", err)
	}
	return account.Profile(), nil
}

// Verify marks the account verified when (email, key) matches its
// outstanding verification key, and consumes the key.
func (s *AccountService) Verify(ctx context.Context, in models.KeyInput) error {
	if err := validation.ValidateKey(&in); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		account, err := repo.GetByEmailAndVerificationKey(ctx, in.Email, in.Key)
		if err != nil {
			return err
		}
		account.Verified = true
		account.VerificationKey = ""
		return repo.Update(ctx, account)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidVerification
		}
		return s.internal(ctx, "error verifying account", err)
	}
	return nil
}

// ResetPassword issues a new password-reset key, replacing any previous one,
// and mails the reset link.
func (s *AccountService) ResetPassword(ctx context.Context, in models.EmailInput) error {
	if err := validation.ValidateEmail(&in); err != nil {
		return err
	}

	key, err := s.generateKey()
	if err != nil {
		return s.internal(ctx, "error generating reset key", err)
	}

	var email string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		account, err := repo.GetByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		account.PasswordResetKey = key
		email = account.Email
		return repo.Update(ctx, account)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrAccountNotFound
		}
		return s.internal(ctx, "error storing reset key", err)
	}

	msg, err := notifier.PasswordResetMessage(s.appBaseURL, email, key)
	if err != nil {
		return s.internal(ctx, "error rendering reset mail", err)
	}
	return s.send(ctx, msg)
}

// ResetPasswordVerify reports whether (email, key) matches the outstanding
// reset key. It changes nothing.
func (s *AccountService) ResetPasswordVerify(ctx context.Context, in models.KeyInput) error {
	if err := validation.ValidateKey(&in); err != nil {
		return err
	}

	repo := s.repomanager.Accounts(s.db)
	if _, err := repo.GetByEmailAndPasswordResetKey(ctx, in.Email, in.Key); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidVerification
		}
		return s.internal(ctx, "error searching reset key", err)
	}
	return nil
}

// ResetPasswordSubmit stores a new password when (email, key) matches the
// outstanding reset key, and consumes the key.
func (s *AccountService) ResetPasswordSubmit(ctx context.Context, in models.ResetSubmitInput) error {
	if err := validation.ValidateResetSubmit(&in); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return s.internal(ctx, "error hashing password", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		account, err := repo.GetByEmailAndPasswordResetKey(ctx, in.Email, in.Key)
		if err != nil {
			return err
		}
		account.PasswordHash = hash
		account.PasswordResetKey = ""
		return repo.Update(ctx, account)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidVerification
		}
		return s.internal(ctx, "error storing new password", err)
	}
	return nil
}

// --- helpers below ---

func (s *AccountService) send(ctx context.Context, msg notifier.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, msg); err != nil {
		logging.FromContext(ctx, s.logger).Error(ctx, "mail delivery failed",
			"to", msg.To, "subject", msg.Subject, "error", err)
		if !errors.Is(err, common.ErrNotifier) {
			err = fmt.Errorf("%w: %w", common.ErrNotifier, err)
		}
		return err
	}
	return nil
}

// internal logs err with detail and returns the opaque common.ErrorInternal.
func (s *AccountService) internal(ctx context.Context, msg string, err error) error {
	logging.FromContext(ctx, s.logger).Error(ctx, msg, "error", err)
	return common.ErrorInternal
}

func (s *AccountService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		key, err := common.GenerateKey(common.KeyLength)
		if err != nil {
			key = "dummy"
		}
		s.dummyHash, _ = auth.HashPassword(key, s.bcryptCost)
	})
	return s.dummyHash
}
