package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestNewConfigFile(t *testing.T) {
	is := is.New(t)
	for _, cfg := range []*Config{DefaultConfig(), {}} {
		s := newConfigFile(cfg)
		is.True(strings.Contains(s, "http:"))
		is.True(strings.Contains(s, "rate_limit:"))
	}
}

func TestConfigFileRoundTrip(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.DataPath = dir
	cfg.HTTP.PublicURL = "https://pathway.example.edu"
	is.NoErr(cfg.WriteConfig())

	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	is.NoErr(err)

	parsed := DefaultConfig()
	is.NoErr(parseFile(parsed, cfg.ConfigPath()))
	is.Equal(parsed.HTTP.PublicURL, "https://pathway.example.edu")
	is.Equal(parsed.TrustedOrigins()[0], "https://pathway.example.edu")
}
