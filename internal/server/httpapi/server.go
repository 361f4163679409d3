// Package httpapi exposes the account operations as a JSON API under /api
// using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/gin-gonic/gin"
)

// AccountService is implemented by services.AccountService.
type AccountService interface {
	Register(ctx context.Context, in models.RegisterInput) error
	Login(ctx context.Context, in models.LoginInput) (string, error)
	Profile(ctx context.Context, accountID string) (*models.Profile, error)
	Verify(ctx context.Context, in models.KeyInput) error
	ResetPassword(ctx context.Context, in models.EmailInput) error
	ResetPasswordVerify(ctx context.Context, in models.KeyInput) error
	ResetPasswordSubmit(ctx context.Context, in models.ResetSubmitInput) error
}

type HTTPServer struct {
	address         string
	accounts        AccountService
	logger          logging.Logger
	jwtSecret       []byte
	shutdownTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, as AccountService, secretKey string, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		accounts:        as,
		jwtSecret:       []byte(secretKey),
		shutdownTimeout: shutdownTimeout,
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors())

	api := r.Group("/api")
	api.GET("/health", s.Health)

	users := api.Group("/users")
	users.POST("/register", s.Register)
	users.POST("/login", s.Login)
	users.GET("/profile", s.authRequired(), s.Profile)
	users.POST("/verify", s.Verify)
	users.POST("/reset-password", s.ResetPassword)
	users.POST("/reset-password-verify", s.ResetPasswordVerify)
	users.POST("/reset-password-submit", s.ResetPasswordSubmit)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
