package config

import (
	"context"
	"testing"

	"github.com/matryer/is"
)

func TestContext(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	is.True(FromContext(ctx) == nil)

	cfg := DefaultConfig()
	cfg.Environment = Production
	ctx = WithContext(ctx, cfg)

	got := FromContext(ctx)
	is.Equal(got, cfg)
	is.True(got.IsProduction())
}

func TestNilConfigHelpers(t *testing.T) {
	var cfg *Config
	if cfg.IsProduction() {
		t.Error("nil config reported production")
	}
}
