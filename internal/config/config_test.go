package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.EndpointConfig.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.EndpointConfig.Timeout)
	assert.Equal(t, AuthTypeSession, cfg.EndpointConfig.AuthType)
	assert.Equal(t, ServerModeSTDIO, cfg.Server.Mode)
	assert.Equal(t, "/admin/login", cfg.Guard.LoginPath)
	assert.Equal(t, "/admin/", cfg.Guard.HomePath)
	assert.Equal(t, "table", cfg.Output)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	content := []byte(`
cognito:
  user_pool_id: eu-west-1_AbCd
  client_id: client-123
endpoint:
  base_url: https://realtor.example.com/
  timeout: 5s
server:
  app: chat
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))
	t.Setenv("REALTOR_COGNITO_CLIENT_ID", "client-from-env")

	cfg, err := Load(newFlags(t, "--log-level", "debug"))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1_AbCd", cfg.Cognito.UserPoolID)
	assert.Equal(t, "client-from-env", cfg.Cognito.ClientID)
	assert.Equal(t, "https://realtor.example.com", cfg.EndpointConfig.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.EndpointConfig.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/login", cfg.Guard.LoginPath)
	assert.Equal(t, "/", cfg.Guard.HomePath)
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTOR_SERVER_MODE", "carrier-pigeon")

	_, err := Load(newFlags(t))
	assert.Error(t, err)
}

func TestCognitoConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CognitoConfig
		wantErr    bool
		wantRegion string
	}{
		{name: "missing ids", cfg: CognitoConfig{}, wantErr: true},
		{name: "region from pool id", cfg: CognitoConfig{UserPoolID: "us-east-1_xyz", ClientID: "c"}, wantRegion: "us-east-1"},
		{name: "explicit region wins", cfg: CognitoConfig{UserPoolID: "us-east-1_xyz", ClientID: "c", Region: "ap-south-1"}, wantRegion: "ap-south-1"},
		{name: "malformed pool id", cfg: CognitoConfig{UserPoolID: "nounderscore", ClientID: "c"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRegion, tt.cfg.Region)
		})
	}
}

func TestGuardConfig_WithDefaults(t *testing.T) {
	admin := GuardConfig{}.WithDefaults(AppAdmin)
	assert.Equal(t, "/admin/login", admin.LoginPath)
	assert.Subset(t, admin.PublicPrefixes, []string{"/_app/", "/admin/_app/", "/admin/favicon"})

	chat := GuardConfig{}.WithDefaults(AppChat)
	assert.Equal(t, "/login", chat.LoginPath)
	assert.NotContains(t, chat.PublicPrefixes, "/admin/_app/")

	custom := GuardConfig{PublicPrefixes: []string{"/static/"}}.WithDefaults(AppAdmin)
	assert.Equal(t, []string{"/static/"}, custom.PublicPrefixes)
}
