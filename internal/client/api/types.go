package api

import "time"

// TokenResponse is the payload of a successful login, registration, or
// first-time setup.
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	Username              string `json:"username"`
	RequiresTOTPSetup     bool   `json:"requires_totp_setup"`
	SessionTimeoutMinutes int    `json:"session_timeout_minutes"`
}

// PasswordConfig mirrors the server-enforced password policy so forms can
// validate before submitting.
type PasswordConfig struct {
	MinLength        int  `json:"min_length"`
	RequireUppercase bool `json:"require_uppercase"`
	RequireLowercase bool `json:"require_lowercase"`
	RequireNumbers   bool `json:"require_numbers"`
	RequireSpecial   bool `json:"require_special"`
}

// TOTPSetup carries a freshly provisioned authenticator secret.
type TOTPSetup struct {
	Secret     string `json:"secret"`
	QRCodeURL  string `json:"qr_code_url"`
	OtpauthURL string `json:"otpauth_url"`
}

// Server is a game server instance as reported by the backend.
type Server struct {
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

// CreateServerParams are the fields of a new server instance.
type CreateServerParams struct {
	Name        string `json:"name"`
	GameType    string `json:"game_type"`
	Port        int    `json:"port"`
	MaxPlayers  int    `json:"max_players"`
	InstallPath string `json:"install_path"`
}

// UpdateServerParams is a partial settings change; nil fields are omitted
// from the request and keep their server-side values.
type UpdateServerParams struct {
	Name       *string `json:"name,omitempty"`
	Port       *int    `json:"port,omitempty"`
	MaxPlayers *int    `json:"max_players,omitempty"`
}

// SystemResources is the host utilization snapshot shown by the dashboard.
type SystemResources struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsedGB    float64 `json:"disk_used_gb"`
	DiskTotalGB   float64 `json:"disk_total_gb"`
}
