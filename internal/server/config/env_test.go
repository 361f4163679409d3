package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("DATABASE_DSN", "sqlite://accounts.db")
	t.Setenv("TOKEN_VALIDITY", "2h")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("MAIL_TIMEOUT", "3s")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, "sqlite://accounts.db", c.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 2525, c.SMTPPort)
	assert.Equal(t, 3*time.Second, c.MailTimeout)

	// untouched
	assert.Equal(t, ":3000", c.EndpointAddrHTTP)
	assert.Equal(t, "localhost", c.SMTPHost)
}

func TestParseEnv_InvalidValuePanics(t *testing.T) {
	t.Setenv("BCRYPT_COST", "ten")

	c := &Config{}
	require.Panics(t, func() { parseEnv(c) })
}
