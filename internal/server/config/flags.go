package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkarlovs/tacpanel/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session timeout, minutes
//	-i string   TOTP issuer name
//	-q bool     require TOTP setup after login
//	-l int      minimum password length
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The session timeout is accepted as an integer in minutes and converted
//     to a time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-i", "-q", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTimeout := fs.Int("t", int(config.SessionTimeout.Minutes()), "session timeout (in minutes)")

	fs.StringVar(&config.TOTPIssuer, "i", config.TOTPIssuer, "TOTP issuer name")
	fs.BoolVar(&config.RequireTOTPSetup, "q", config.RequireTOTPSetup, "require TOTP setup after login")
	fs.IntVar(&config.Password.MinLength, "l", config.Password.MinLength, "minimum password length")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTimeout = time.Duration(*sessionTimeout) * time.Minute
}
