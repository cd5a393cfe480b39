package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/config"
)

func TestNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		config.DefaultConfig(),
		{},
		{Log: config.LogConfig{Format: "logfmt"}},
		{Environment: config.Production},
	} {
		logger, f, err := NewLogger(c)
		if err != nil {
			t.Errorf("NewLogger(%+v): %v", c, err)
		}
		if logger == nil {
			t.Errorf("NewLogger(%+v) returned a nil logger", c)
		}
		if f != nil {
			t.Errorf("NewLogger(%+v) opened a file without a path", c)
		}
	}
}

func TestNewLoggerErrors(t *testing.T) {
	is := is.New(t)

	_, _, err := NewLogger(nil)
	is.Equal(err, config.ErrNilConfig)

	_, _, err = NewLogger(&config.Config{Log: config.LogConfig{Path: "\x00"}})
	is.True(err != nil)
}

func TestProductionLogsJSONToFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "pathway.log")
	logger, f, err := NewLogger(&config.Config{
		Name:        "Pathway",
		Environment: config.Production,
		Log:         config.LogConfig{Path: path},
	})
	is.NoErr(err)
	is.True(f != nil)

	logger.Info("recomputed popularity", "updated", 3)
	is.NoErr(f.Close())

	data, err := os.ReadFile(path)
	is.NoErr(err)

	var line map[string]interface{}
	is.NoErr(json.Unmarshal(data, &line))
	is.Equal(line["msg"], "recomputed popularity")
	is.Equal(line["prefix"], "pathway")
	is.Equal(line["updated"], float64(3))
}
