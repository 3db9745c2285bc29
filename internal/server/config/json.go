package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/flagx"
	"github.com/kemalyaa/webinar-session-jwt/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	SessionAbsoluteTimeout       timex.Duration `json:"session_absolute_timeout"`
	SessionRollingInterval       timex.Duration `json:"session_rolling_interval"`
	SessionExtendWindow          timex.Duration `json:"session_extend_window"`
	SessionCookieName            string         `json:"session_cookie_name"`
	AccessCookieName             string         `json:"access_cookie_name"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If it is not set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

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

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.SessionAbsoluteTimeout = time.Duration(c.SessionAbsoluteTimeout.Duration)
	config.SessionRollingInterval = time.Duration(c.SessionRollingInterval.Duration)
	config.SessionExtendWindow = time.Duration(c.SessionExtendWindow.Duration)
	config.SessionCookieName = c.SessionCookieName
	config.AccessCookieName = c.AccessCookieName
}
