package httpapi

import (
	"bytes"
	"image/png"
	"net/http"

	"github.com/dkarlovs/tacpanel/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp"
)

func (a *API) checkFirstRun(c *gin.Context) {
	firstRun, err := a.users.IsFirstRun(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, firstRunResponse{IsFirstRun: firstRun})
}

func (a *API) passwordConfig(c *gin.Context) {
	p := a.users.PasswordPolicy()
	c.JSON(http.StatusOK, passwordConfigResponse{
		MinLength:        p.MinLength,
		RequireUppercase: p.RequireUppercase,
		RequireLowercase: p.RequireLowercase,
		RequireNumbers:   p.RequireNumbers,
		RequireSpecial:   p.RequireSpecial,
	})
}

func (a *API) firstTimeSetup(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := a.users.SetupFirstAdmin(c.Request.Context(), req.Username, req.Password, req.SecurityQuestions.answers())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(res))
}

func (a *API) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := a.users.Register(c.Request.Context(), req.Username, req.Password, req.SecurityQuestions.answers())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(res))
}

func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := a.users.Login(c.Request.Context(), req.Username, req.Password, req.TOTPCode)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(res))
}

// securityQuestions only confirms questions exist. The response is
// deliberately identical for unknown users and users without questions.
func (a *API) securityQuestions(c *gin.Context) {
	err := a.users.HasSecurityQuestions(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Detail: "User not found or security questions not set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_security_questions": true})
}

func (a *API) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	answers := [4]string{req.Answer1, req.Answer2, req.Answer3, req.Answer4}
	if err := a.users.ResetPassword(c.Request.Context(), req.Username, answers, req.NewPassword); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (a *API) totpSetup(c *gin.Context) {
	enr, err := a.users.ProvisionTOTP(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, totpSetupResponse{
		Secret:     enr.Secret,
		QRCodeURL:  "/api/auth/totp/qr",
		OtpauthURL: enr.URL,
	})
}

func (a *API) totpVerify(c *gin.Context) {
	var req totpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := a.users.VerifyTOTP(c.Request.Context(), currentUserID(c), req.TOTPCode); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA enabled successfully"})
}

func (a *API) totpStatus(c *gin.Context) {
	enabled, err := a.users.TOTPStatus(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, totpStatusResponse{Enabled: enabled})
}

// totpQR renders the caller's pending enrollment as a PNG QR code.
func (a *API) totpQR(c *gin.Context) {
	enr, err := a.users.PendingTOTP(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	key, err := otp.NewKeyFromURL(enr.URL)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	img, err := key.Image(256, 256)
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func toTokenResponse(res *services.AuthResult) tokenResponse {
	return tokenResponse{
		AccessToken:           res.Token,
		TokenType:             "bearer",
		Username:              res.Username,
		RequiresTOTPSetup:     res.RequiresTOTPSetup,
		SessionTimeoutMinutes: res.SessionTimeoutMinutes,
	}
}
