package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Client-facing messages.
const (
	msgServerError         = "Server error"
	msgInvalidBody         = "Invalid request body"
	msgUserExists          = "User already exists"
	msgInvalidCredentials  = "Invalid Credentials"
	msgInvalidVerification = "Invalid verification key or email"
	msgEmailNotFound       = "Entered email doesn't exist in our database."
	msgAccountNotFound     = "Account not found"
	msgNoToken             = "No token, authorization denied"
	msgInvalidToken        = "Token is not valid"
)

// ErrorItem is one entry of the {errors:[...]} response body.
type ErrorItem struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Errors: []ErrorItem{{Msg: msg}}})
}

// respondError maps a service error onto a status and body. Unexpected
// errors are logged and answered with an opaque 500.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		items := make([]ErrorItem, 0, len(verr.Fields))
		for _, d := range verr.Details() {
			items = append(items, ErrorItem{Msg: d.Message, Param: d.Field})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Errors: items})
	case errors.Is(err, common.ErrValidation):
		abortWithMessage(c, http.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, common.ErrDuplicateAccount):
		abortWithMessage(c, http.StatusBadRequest, msgUserExists)
	case errors.Is(err, common.ErrInvalidCredentials):
		abortWithMessage(c, http.StatusBadRequest, msgInvalidCredentials)
	case errors.Is(err, common.ErrInvalidVerification):
		abortWithMessage(c, http.StatusBadRequest, msgInvalidVerification)
	case errors.Is(err, common.ErrAccountNotFound):
		abortWithMessage(c, http.StatusBadRequest, msgEmailNotFound)
	default:
		ctx := c.Request.Context()
		logging.FromContext(ctx, s.logger).Error(ctx, "request failed", "path", c.FullPath(), "error", err)
		abortWithMessage(c, http.StatusInternalServerError, msgServerError)
	}
}

// respondBindError answers a request body that could not be decoded or that
// failed its binding rules.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		abortWithMessage(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	items := make([]ErrorItem, 0, len(verrs))
	for _, fe := range verrs {
		items = append(items, ErrorItem{Msg: bindMessage(fe), Param: fe.Field()})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Errors: items})
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be blank"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
