package httpapi

import (
	"time"

	"github.com/dkarlovs/tacpanel/internal/server/models"
)

// Wire DTOs. Field names follow the public API contract; keep json tags
// stable even when internal model fields are renamed.

type errorResponse struct {
	Detail string `json:"detail"`
	// Code is a machine-readable discriminator for failures that clients
	// must route differently (e.g. "totp_required" vs a plain 401).
	Code string `json:"code,omitempty"`
}

type securityQuestionsPayload struct {
	Question1 string `json:"question1" binding:"required"`
	Question2 string `json:"question2" binding:"required"`
	Question3 string `json:"question3" binding:"required"`
	Question4 string `json:"question4" binding:"required"`
}

func (p securityQuestionsPayload) answers() [4]string {
	return [4]string{p.Question1, p.Question2, p.Question3, p.Question4}
}

type registerRequest struct {
	Username          string                   `json:"username" binding:"required"`
	Password          string                   `json:"password" binding:"required"`
	SecurityQuestions securityQuestionsPayload `json:"security_questions" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

type tokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	Username              string `json:"username"`
	RequiresTOTPSetup     bool   `json:"requires_totp_setup"`
	SessionTimeoutMinutes int    `json:"session_timeout_minutes"`
}

type firstRunResponse struct {
	IsFirstRun bool `json:"is_first_run"`
}

type passwordConfigResponse struct {
	MinLength        int  `json:"min_length"`
	RequireUppercase bool `json:"require_uppercase"`
	RequireLowercase bool `json:"require_lowercase"`
	RequireNumbers   bool `json:"require_numbers"`
	RequireSpecial   bool `json:"require_special"`
}

type resetPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	Answer1     string `json:"answer1" binding:"required"`
	Answer2     string `json:"answer2" binding:"required"`
	Answer3     string `json:"answer3" binding:"required"`
	Answer4     string `json:"answer4" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type totpSetupResponse struct {
	Secret     string `json:"secret"`
	QRCodeURL  string `json:"qr_code_url"`
	OtpauthURL string `json:"otpauth_url"`
}

type totpVerifyRequest struct {
	TOTPCode string `json:"totp_code" binding:"required"`
}

type totpStatusResponse struct {
	Enabled bool `json:"totp_enabled"`
}

type createServerRequest struct {
	Name        string `json:"name" binding:"required"`
	GameType    string `json:"game_type" binding:"required"`
	Port        int    `json:"port" binding:"required"`
	MaxPlayers  int    `json:"max_players" binding:"required"`
	InstallPath string `json:"install_path"`
}

// updateServerRequest is a partial update; absent fields keep their values.
type updateServerRequest struct {
	Name       *string `json:"name"`
	Port       *int    `json:"port"`
	MaxPlayers *int    `json:"max_players"`
}

type systemResourcesResponse struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsedGB    float64 `json:"disk_used_gb"`
	DiskTotalGB   float64 `json:"disk_total_gb"`
}

type serverResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	GameType       string    `json:"game_type"`
	Port           int       `json:"port"`
	MaxPlayers     int       `json:"max_players"`
	CurrentPlayers int       `json:"current_players"`
	Status         string    `json:"status"`
	InstallPath    string    `json:"install_path"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func toServerResponse(s *models.ServerInstance) serverResponse {
	return serverResponse{
		ID:             s.ID,
		Name:           s.Name,
		GameType:       s.GameType,
		Port:           s.Port,
		MaxPlayers:     s.MaxPlayers,
		CurrentPlayers: s.CurrentPlayers,
		Status:         s.Status,
		InstallPath:    s.InstallPath,
		UserID:         s.UserID,
		CreatedAt:      s.CreatedAt,
	}
}
