package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	args := []string{
		"-c", "ignored.json",
		"-a", "127.0.0.1:9090", "-g", ":6000", "-d", "postgres://x",
		"-s", "acc", "-r", "ref", "-b", "bucket", "-e", "http://minio:9000",
	}

	require.NoError(t, parseFlags(cfg, args))

	want := &Config{
		HTTPAddr:           "127.0.0.1:9090",
		GRPCHealthAddr:     ":6000",
		DatabaseDSN:        "postgres://x",
		AccessTokenSecret:  "acc",
		RefreshTokenSecret: "ref",
		S3Bucket:           "bucket",
		S3BaseEndpoint:     "http://minio:9000",
		LogLevel:           "info",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_Precedence(t *testing.T) {
	withDotenv(t)
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"http_addr":":7000","s3_bucket":"json-bucket","log_level":"debug"}`), 0o600))

	t.Setenv("S3_BUCKET", "env-bucket")

	cfg, err := LoadConfig([]string{"-c", path, "-a", ":7100"})
	require.NoError(t, err)

	assert.Equal(t, ":7100", cfg.HTTPAddr, "flag beats json")
	assert.Equal(t, "env-bucket", cfg.S3Bucket, "env beats json")
	assert.Equal(t, "debug", cfg.LogLevel, "json beats defaults")
	assert.Equal(t, ":50051", cfg.GRPCHealthAddr)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	withDotenv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o600))

	_, err := LoadConfig([]string{"-c", path})
	require.Error(t, err)
}
