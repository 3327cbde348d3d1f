package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EnvBotToken   = "TELEGRAM_BOT_TOKEN"
	EnvChannelID  = "TELEGRAM_CHANNEL_ID"
	EnvUnattended = "FEEDCASTER_UNATTENDED"
	EnvActions    = "GITHUB_ACTIONS"
	EnvRef        = "GITHUB_REF"
)

var ErrMissingCredentials = errors.New("missing credentials")

// Credentials are the two secrets every run needs.
type Credentials struct {
	Token     string
	ChannelID string
}

// CredentialsFromEnv reads credentials with getenv (usually os.Getenv).
func CredentialsFromEnv(getenv func(string) string) Credentials {
	return Credentials{
		Token:     strings.TrimSpace(getenv(EnvBotToken)),
		ChannelID: strings.TrimSpace(getenv(EnvChannelID)),
	}
}

// Validate reports which variables are missing.
func (c Credentials) Validate() error {
	var missing []string
	if c.Token == "" {
		missing = append(missing, EnvBotToken)
	}
	if c.ChannelID == "" {
		missing = append(missing, EnvChannelID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return nil
}

// Unattended reports whether we run under automation (CI), where the
// durability hook must run.
func Unattended(getenv func(string) string) bool {
	return isTrue(getenv(EnvActions)) || isTrue(getenv(EnvUnattended))
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
