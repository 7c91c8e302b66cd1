package main

import (
	"bytes"
	"testing"

	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/preferences"
	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func TestRender(t *testing.T) {
	data := []map[string]any{{"id": "q1", "synced": true}}
	table := func() pterm.TableData {
		return pterm.TableData{{"ID", "Synced"}, {"q1", "yes"}}
	}

	tests := []struct {
		format string
		want   string
	}{
		{format: outputJSON, want: "[\n  {\n    \"id\": \"q1\",\n    \"synced\": true\n  }\n]\n"},
		{format: outputYAML, want: "- id: q1\n  synced: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(&buf, tt.format, data, table))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, outputTable, data, table))
		assert.Contains(t, buf.String(), "q1")
		assert.Contains(t, buf.String(), "Synced")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, outputTable, nil, func() pterm.TableData {
			return pterm.TableData{{"ID"}}
		}))
		assert.Equal(t, "Nothing to show\n", buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.ErrorContains(t, render(&bytes.Buffer{}, "xml", data, table), "unsupported output format")
	})
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$1,250,000", formatPrice(1250000))
	assert.Equal(t, "$950", formatPrice(950))
	assert.Equal(t, "-1,000", humanInt(-1000))
	assert.Equal(t, "2.5", formatFloat(2.5))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long…", truncate("a long\nanswer", 7))
	assert.Equal(t, "any", formatRange(nil, formatFloat))
	assert.Equal(t, "3+", formatRange(&preferences.Range{Min: float(3)}, formatFloat))
	assert.Equal(t, "up to 4", formatRange(&preferences.Range{Max: float(4)}, formatFloat))
	assert.Equal(t, "2 - 4", formatRange(&preferences.Range{Min: float(2), Max: float(4)}, formatFloat))
}

func prefsFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("prefs", pflag.ContinueOnError)
	addPrefsFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestApplyPrefsFlags(t *testing.T) {
	email := "old@example.com"
	existing := func() *preferences.UserPreferences {
		return &preferences.UserPreferences{
			Email:      &email,
			PriceRange: &preferences.Range{Min: float(300000), Max: float(500000)},
			ZipCodes:   []string{"94110"},
			Bedrooms:   &preferences.Range{Min: float(2)},
		}
	}

	tests := []struct {
		name    string
		args    []string
		want    *preferences.UserPreferences
		wantErr string
	}{
		{
			name: "no flags keeps everything",
			want: existing(),
		},
		{
			name: "one bound of a range",
			args: []string{"--price-max", "600000", "--zip", "94110, 94107,"},
			want: &preferences.UserPreferences{
				Email:      &email,
				PriceRange: &preferences.Range{Min: float(300000), Max: float(600000)},
				ZipCodes:   []string{"94110", "94107"},
				Bedrooms:   &preferences.Range{Min: float(2)},
			},
		},
		{
			name: "clear ranges and blank email",
			args: []string{"--clear-ranges", "--email", " ", "--sqft-min", "1200"},
			want: &preferences.UserPreferences{
				ZipCodes: []string{"94110"},
				Sqft:     &preferences.Range{Min: float(1200)},
			},
		},
		{
			name:    "inverted range",
			args:    []string{"--beds-min", "4", "--beds-max", "3"},
			wantErr: "--beds-min must not be greater than --beds-max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := existing()
			err := applyPrefsFlags(prefsFlags(t, tt.args...), prefs)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, cmp.Equal(tt.want, prefs), cmp.Diff(tt.want, prefs))
		})
	}
}

func TestApplyServerFlags(t *testing.T) {
	newFlags := func(args ...string) *pflag.FlagSet {
		fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
		fs.String("app", "", "")
		fs.String("mode", "", "")
		fs.String("static-dir", "", "")
		fs.Int("port", 0, "")
		fs.String("host", "", "")
		require.NoError(t, fs.Parse(args))
		return fs
	}

	sc := config.ServerConfig{Host: "localhost", Port: 5173, Mode: config.ServerModeSTDIO, App: config.AppAdmin}
	require.NoError(t, applyServerFlags(newFlags("--app", "chat", "--port", "8081", "--mode", "sse", "--static-dir", "build"), &sc))
	assert.Equal(t, config.ServerConfig{
		Host:      "localhost",
		Port:      8081,
		Mode:      config.ServerModeSSE,
		App:       config.AppChat,
		StaticDir: "build",
	}, sc)

	assert.ErrorContains(t, applyServerFlags(newFlags("--app", "crm"), &sc), "unknown app")
	assert.ErrorContains(t, applyServerFlags(newFlags("--mode", "ws"), &sc), "unsupported server mode")
}
