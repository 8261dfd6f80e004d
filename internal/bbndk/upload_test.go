package bbndk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Credentials exported in the environment must reach the client even when no
// conf file exists — the usual CI setup has only env secrets.
func TestR2CredentialsFromEnvironment(t *testing.T) {
	t.Setenv("R2_ACCOUNT_ID", "acct123")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "releases")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "no-such.conf"))
	require.NoError(t, err)

	assert.Equal(t, "acct123", cfg.Values["R2_ACCOUNT_ID"])
	assert.Equal(t, "releases", cfg.Values["R2_BUCKET_NAME"])

	client, err := NewR2Client(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "releases", client.BucketName)
}

// The environment overrides conf-file credentials, matching how BBNDK_*
// keys behave.
func TestR2CredentialsEnvOverridesConf(t *testing.T) {
	t.Setenv("R2_BUCKET_NAME", "from-env")

	cfg := &Config{Values: map[string]string{"R2_BUCKET_NAME": "from-file"}}
	mergeEnvOverrides(cfg)
	assert.Equal(t, "from-env", cfg.Values["R2_BUCKET_NAME"])
}

func TestNewR2ClientMissingCredentials(t *testing.T) {
	cfg := &Config{Values: map[string]string{}}
	_, err := NewR2Client(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R2 credentials missing")
}
