package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `environment: development
server:
  port: 8086
  shutdown_timeout: 10s
market:
  timezone: Asia/Kolkata
  spot_symbol: "NIFTY 50"
  bank_symbol: "NIFTY BANK"
  vix_symbol: "INDIA VIX"
  foreign_cues:
    - symbol: "GIFT NIFTY"
      name: "GIFT Nifty"
    - symbol: "S&P 500"
      name: "S&P 500"
broker:
  access_token: token-123
  websocket_url: wss://stream.example.com/quotes
  quote_max_age: 90s
cache:
  ttl: 15m
kafka:
  enabled: true
  brokers: ["localhost:9092"]
  assessments_topic: assessments
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Port != 8086 {
		t.Fatalf("port %d want 8086", c.Server.Port)
	}
	if c.Market.SpotSymbol != "NIFTY 50" {
		t.Fatalf("spot symbol %q", c.Market.SpotSymbol)
	}
	if c.Broker.QuoteMaxAge != 90*time.Second {
		t.Fatalf("quote max age %v", c.Broker.QuoteMaxAge)
	}
	if c.Cache.TTL != 15*time.Minute {
		t.Fatalf("cache ttl %v", c.Cache.TTL)
	}
	if len(c.Market.ForeignCues) != 2 {
		t.Fatalf("foreign cues %d want 2", len(c.Market.ForeignCues))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"no environment",
			strings.Replace(sampleYAML, "environment: development\n", "", 1),
			"environment",
		},
		{
			"no spot symbol",
			strings.Replace(sampleYAML, `  spot_symbol: "NIFTY 50"`+"\n", "", 1),
			"spot_symbol",
		},
		{
			"stream without token",
			strings.Replace(sampleYAML, "  access_token: token-123\n", "", 1),
			"access_token",
		},
		{
			"kafka without brokers",
			strings.Replace(sampleYAML, `  brokers: ["localhost:9092"]`+"\n", "", 1),
			"brokers",
		},
	}
	for _, tc := range cases {
		_, err := Load(writeConfig(t, tc.body))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q should mention %s", tc.name, err, tc.want)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BROKER_ACCESS_TOKEN", "env-token")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ADVISOR_URL", "http://advisor:9000")

	c, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Broker.AccessToken != "env-token" {
		t.Fatalf("access token %q", c.Broker.AccessToken)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers %v", c.Kafka.Brokers)
	}
	if c.Advisor.URL != "http://advisor:9000" {
		t.Fatalf("advisor url %q", c.Advisor.URL)
	}
}

func TestSymbols(t *testing.T) {
	c, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.Symbols()
	want := []string{"NIFTY 50", "NIFTY BANK", "INDIA VIX", "GIFT NIFTY", "S&P 500"}
	if len(got) != len(want) {
		t.Fatalf("symbols %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("symbols %v want %v", got, want)
		}
	}
}
