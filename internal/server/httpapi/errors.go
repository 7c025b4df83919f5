package httpapi

import (
	"errors"
	"net/http"

	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/gin-gonic/gin"
)

// Second-factor failures carry a machine-readable code so clients never have
// to sniff the human-readable detail string.
const (
	codeTOTPRequired = "totp_required"
	codeTOTPInvalid  = "totp_invalid"
)

// abortWithError translates service errors to the API's error contract.
func (a *API) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.Is(err, common.ErrSecondFactorRequired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "TOTP code required", Code: codeTOTPRequired})
	case errors.Is(err, common.ErrInvalidTOTPCode):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "Invalid TOTP code", Code: codeTOTPInvalid})
	case errors.Is(err, common.ErrorUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "Invalid username or password"})
	case errors.Is(err, common.ErrTokenExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "Token has expired"})
	case errors.Is(err, common.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "Could not validate credentials"})
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Detail: "Not found"})
	default:
		a.logger.Error(c.Request.Context(), "internal error", "path", c.Request.URL.Path, "error", err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Detail: detail})
}
