package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "json", cfg: config.LoggingConfig{Level: "debug", Format: "json"}},
		{name: "bad level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "realtor.log")
	l, err := NewLogger(&config.LoggingConfig{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		DisableConsole: true,
	})
	require.NoError(t, err)

	l.Info("signed in")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "signed in")
}
