package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkarlovs/tacpanel/internal/flagx"
	"github.com/dkarlovs/tacpanel/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "60m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	SessionTimeout   timex.Duration `json:"session_timeout"`
	TOTPIssuer       string         `json:"totp_issuer"`
	RequireTOTPSetup bool           `json:"require_totp_setup"`
	PasswordPolicy   struct {
		MinLength        int  `json:"min_length"`
		RequireUppercase bool `json:"require_uppercase"`
		RequireLowercase bool `json:"require_lowercase"`
		RequireNumbers   bool `json:"require_numbers"`
		RequireSpecial   bool `json:"require_special"`
	} `json:"password_policy"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionTimeout = time.Duration(c.SessionTimeout.Duration)
	config.TOTPIssuer = c.TOTPIssuer
	config.RequireTOTPSetup = c.RequireTOTPSetup
	config.Password = PasswordPolicy{
		MinLength:        c.PasswordPolicy.MinLength,
		RequireUppercase: c.PasswordPolicy.RequireUppercase,
		RequireLowercase: c.PasswordPolicy.RequireLowercase,
		RequireNumbers:   c.PasswordPolicy.RequireNumbers,
		RequireSpecial:   c.PasswordPolicy.RequireSpecial,
	}
}
