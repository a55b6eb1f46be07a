package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{SkipDotEnv: true})
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Model.TopK)
	assert.Equal(t, 15, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, []string{"openai", "gemini"}, cfg.LLM.Providers)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 10, cfg.Search.MaxWebResults)
	assert.Equal(t, int64(10<<20), cfg.ResumeMaxBytes)
	assert.Equal(t, 60, cfg.JWT.ExpirationMinutes)
	assert.Equal(t, 12, cfg.Password.BcryptCost)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDERS", "Gemini, genai")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("PREDICTION_TOP_K", "5")
	t.Setenv("JWT_EXPIRATION_MINUTES", "15")
	t.Setenv("MODEL_PATH", "s3://models/clf.json")
	t.Setenv("DEFAULT_RESOURCE_URL", "https://learn.example.org/")
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{SkipDotEnv: true})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"gemini", "genai"}, cfg.LLM.Providers)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Model.TopK)
	assert.Equal(t, 15, cfg.JWT.ExpirationMinutes)
	assert.Equal(t, "s3://models/clf.json", cfg.Model.ClassifierPath)
	assert.Equal(t, "https://learn.example.org", cfg.Search.DefaultResourceURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nlog_level: debug\nmax_web_results: 4\n"), 0o644))

	cfg, err := Load(Options{ConfigFile: path, SkipDotEnv: true})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Search.MaxWebResults)
}

func TestLoad_ConfigFileEnvWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "7100")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\n"), 0o644))

	cfg, err := Load(Options{ConfigFile: path, SkipDotEnv: true})
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Port)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), SkipDotEnv: true})
	assert.Error(t, err)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Chdir(t.TempDir())

	_, err := Load(Options{SkipDotEnv: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_SkipAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{SkipDotEnv: true, SkipAuth: true})
	require.NoError(t, err)
	assert.Nil(t, cfg.JWT)
	assert.Nil(t, cfg.Password)
	assert.Equal(t, 3, cfg.Model.TopK)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown provider": {"LLM_PROVIDERS", "openai,claude"},
		"bad log level":    {"LOG_LEVEL", "verbose"},
		"bad top k":        {"PREDICTION_TOP_K", "0"},
		"bad port":         {"PORT", "70000"},
		"bad cost":         {"BCRYPT_COST", "4"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(kv[0], kv[1])
			t.Chdir(t.TempDir())

			_, err := Load(Options{SkipDotEnv: true})
			assert.Error(t, err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
