package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type keyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Key   string `json:"key" binding:"required,max=128"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetSubmitRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Key      string `json:"key" binding:"required,max=128"`
	Password string `json:"password" binding:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	Data *models.Profile `json:"data"`
}

var okResponse = successResponse{Success: true}

func (s *HTTPServer) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := s.accounts.Register(c.Request.Context(), models.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, okResponse)
}

func (s *HTTPServer) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := s.accounts.Login(c.Request.Context(), models.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *HTTPServer) Profile(c *gin.Context) {
	profile, err := s.accounts.Profile(c.Request.Context(), c.GetString(accountIDKey))
	if err != nil {
		// the token outlived its account
		if errors.Is(err, common.ErrAccountNotFound) {
			abortWithMessage(c, http.StatusBadRequest, msgAccountNotFound)
			return
		}
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse{Data: profile})
}

func (s *HTTPServer) Verify(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := s.accounts.Verify(c.Request.Context(), models.KeyInput{Email: req.Email, Key: req.Key}); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, okResponse)
}

func (s *HTTPServer) ResetPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := s.accounts.ResetPassword(c.Request.Context(), models.EmailInput{Email: req.Email}); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, okResponse)
}

func (s *HTTPServer) ResetPasswordVerify(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := s.accounts.ResetPasswordVerify(c.Request.Context(), models.KeyInput{Email: req.Email, Key: req.Key}); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, okResponse)
}

func (s *HTTPServer) ResetPasswordSubmit(c *gin.Context) {
	var req resetSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := models.ResetSubmitInput{Email: req.Email, Key: req.Key, Password: req.Password}
	if err := s.accounts.ResetPasswordSubmit(c.Request.Context(), in); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, okResponse)
}
