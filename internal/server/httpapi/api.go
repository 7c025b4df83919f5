// Package httpapi exposes the panel's JSON API over HTTP using gin. It is a
// thin layer: request decoding, auth middleware, and error translation live
// here; all business rules live in the services package.
package httpapi

import (
	"context"

	"github.com/dkarlovs/tacpanel/internal/logging"
	"github.com/dkarlovs/tacpanel/internal/server/config"
	"github.com/dkarlovs/tacpanel/internal/server/models"
	"github.com/dkarlovs/tacpanel/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is the slice of the user service this layer depends on.
type UserService interface {
	IsFirstRun(ctx context.Context) (bool, error)
	PasswordPolicy() config.PasswordPolicy
	SetupFirstAdmin(ctx context.Context, username, password string, answers [4]string) (*services.AuthResult, error)
	Register(ctx context.Context, username, password string, answers [4]string) (*services.AuthResult, error)
	Login(ctx context.Context, username, password, totpCode string) (*services.AuthResult, error)
	HasSecurityQuestions(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, username string, answers [4]string, newPassword string) error
	ProvisionTOTP(ctx context.Context, userID string) (*services.TOTPEnrollment, error)
	PendingTOTP(ctx context.Context, userID string) (*services.TOTPEnrollment, error)
	VerifyTOTP(ctx context.Context, userID, code string) error
	TOTPStatus(ctx context.Context, userID string) (bool, error)
}

// ServerService is the slice of the server instance service this layer
// depends on.
type ServerService interface {
	Create(ctx context.Context, userID string, params services.CreateServerParams) (*models.ServerInstance, error)
	List(ctx context.Context, userID string) ([]*models.ServerInstance, error)
	Get(ctx context.Context, id, userID string) (*models.ServerInstance, error)
	Update(ctx context.Context, id, userID string, params services.UpdateServerParams) (*models.ServerInstance, error)
	Delete(ctx context.Context, id, userID string) error
	Resources(ctx context.Context, userID string) (*models.SystemResources, error)
	Start(ctx context.Context, id, userID string) (*models.ServerInstance, error)
	Stop(ctx context.Context, id, userID string) (*models.ServerInstance, error)
	Restart(ctx context.Context, id, userID string) (*models.ServerInstance, error)
}

type API struct {
	logger    logging.Logger
	users     UserService
	servers   ServerService
	secretKey []byte
}

func New(logger logging.Logger, users UserService, servers ServerService, secretKey []byte) *API {
	return &API{logger: logger, users: users, servers: servers, secretKey: secretKey}
}

// Router builds the gin engine with all panel routes mounted under /api.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.GET("/check-first-run", a.checkFirstRun)
	auth.GET("/password-config", a.passwordConfig)
	auth.POST("/first-time-setup", a.firstTimeSetup)
	auth.POST("/register", a.register)
	auth.POST("/login", a.login)
	auth.GET("/security-questions/:username", a.securityQuestions)
	auth.POST("/reset-password", a.resetPassword)

	protected := api.Group("", a.requireAuth())
	protected.POST("/auth/totp/setup", a.totpSetup)
	protected.POST("/auth/totp/verify", a.totpVerify)
	protected.GET("/auth/totp/status", a.totpStatus)
	protected.GET("/auth/totp/qr", a.totpQR)

	protected.POST("/servers", a.createServer)
	protected.GET("/servers", a.listServers)
	protected.GET("/servers/:id", a.getServer)
	protected.PATCH("/servers/:id", a.updateServer)
	protected.DELETE("/servers/:id", a.deleteServer)
	protected.POST("/servers/:id/start", a.startServer)
	protected.POST("/servers/:id/stop", a.stopServer)
	protected.POST("/servers/:id/restart", a.restartServer)

	protected.GET("/system/resources", a.systemResources)

	return r
}
