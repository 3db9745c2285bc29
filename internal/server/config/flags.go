package config

import (
	"flag"
	"os"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-o int      session absolute timeout, days
//	-i int      session rolling interval, minutes
//	-x int      session extension window, minutes
//	-n string   session cookie name
//	-k string   access token cookie name
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-o", "-i", "-x", "-n", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	sessionAbsoluteTimeout := fs.Int("o", int(config.SessionAbsoluteTimeout.Hours()/24), "session_absolute_timeout (in days)")
	sessionRollingInterval := fs.Int("i", int(config.SessionRollingInterval.Minutes()), "session_rolling_interval (in minutes)")
	sessionExtendWindow := fs.Int("x", int(config.SessionExtendWindow.Minutes()), "session_extend_window (in minutes)")

	fs.StringVar(&config.SessionCookieName, "n", config.SessionCookieName, "session cookie name")
	fs.StringVar(&config.AccessCookieName, "k", config.AccessCookieName, "access token cookie name")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.SessionAbsoluteTimeout = time.Duration(*sessionAbsoluteTimeout) * 24 * time.Hour
	config.SessionRollingInterval = time.Duration(*sessionRollingInterval) * time.Minute
	config.SessionExtendWindow = time.Duration(*sessionExtendWindow) * time.Minute
}
