package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"VISITFLOW_ADDR", "JWT_SIGNING_KEY", "ENVIRONMENT", "DATABASE_URL", "KAFKA_BROKERS", "SCAN_INTERVAL", "TIMEZONE", "COMPLIANCE_SCOPE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DefaultScanInterval, cfg.ScanInterval)
	assert.Equal(t, "visitor_lifetime", cfg.ComplianceScope)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.NotEmpty(t, cfg.JWTSigningKey, "local environment gets a development key")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "90s")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092,broker-1:9092")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("COMPLIANCE_SCOPE", "schedule_window")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.ScanInterval)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "schedule_window", cfg.ComplianceScope)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"scan interval":       {"SCAN_INTERVAL": "soon"},
		"negative interval":   {"SCAN_INTERVAL": "-1m"},
		"time zone":           {"TIMEZONE": "Mars/Olympus"},
		"audit queue":         {"AUDIT_QUEUE_SIZE": "0"},
		"missing key in prod": {"ENVIRONMENT": "production", "JWT_SIGNING_KEY": ""},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
