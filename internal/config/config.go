// Package config loads service configuration from the environment, an
// optional .env file and an optional config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved service configuration.
type Config struct {
	Port            int
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	DatabaseURL  string
	MaxOpenConns int
	MaxIdleConns int

	Model ModelConfig

	Storage        StorageConfig
	ResumeBucket   string
	ResumeMaxBytes int64

	JWT      *JWTConfig
	Password *PasswordConfig

	LLM    LLMConfig
	Search SearchConfig

	CareerInfoPath    string
	CareerRoadmapPath string

	RedisURL     string
	AMQPURL      string
	AMQPExchange string

	// Viper exposes the underlying settings for packages that read their
	// own keys (rate limiting).
	Viper *viper.Viper
}

// ModelConfig locates the model artifacts.
type ModelConfig struct {
	ClassifierPath          string
	LabelEncoderPath        string
	SkillsVectorizerPath    string
	InterestsVectorizerPath string
	EducationMapPath        string
	EducationDefault        string
	TopK                    int
}

// StorageConfig configures the S3-compatible object store.
type StorageConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// LLMConfig lists the providers in fallback order and their credentials.
type LLMConfig struct {
	Providers []string
	Timeout   time.Duration

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey   string
	GeminiModel string

	GenAIKey      string
	GenAIModel    string
	GenAIProject  string
	GenAILocation string
}

// SearchConfig configures the web-search collaborator.
type SearchConfig struct {
	APIURL             string
	APIKey             string
	CX                 string
	Timeout            time.Duration
	MaxWebResults      int
	DefaultResourceURL string
}

// Options control where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file; when empty, config.yaml is
	// searched for in ./configs and the working directory.
	ConfigFile string
	// SkipDotEnv disables .env loading (tests).
	SkipDotEnv bool
	// SkipAuth leaves JWT and Password nil. Offline commands that never
	// issue tokens use it so JWT_SECRET is not required.
	SkipAuth bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8000)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("shutdown_timeout", "15s")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("database_url", "")
	v.SetDefault("db_max_open_conns", 15)
	v.SetDefault("db_max_idle_conns", 5)

	v.SetDefault("model_path", "models/career_model.json")
	v.SetDefault("label_encoder_path", "models/label_encoder.json")
	v.SetDefault("skill_vectorizer_path", "models/skill_vectorizer.json")
	v.SetDefault("interest_vectorizer_path", "models/interest_vectorizer.json")
	v.SetDefault("education_map_path", "")
	v.SetDefault("education_default", "")
	v.SetDefault("prediction_top_k", 3)

	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "auto")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("resume_bucket", "")
	v.SetDefault("resume_max_bytes", 10<<20)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_expiration_minutes", 60)
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("password_pepper", "")

	v.SetDefault("llm_providers", "openai,gemini")
	v.SetDefault("llm_timeout", "30s")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("genai_api_key", "")
	v.SetDefault("genai_model", "gemini-2.5-flash")
	v.SetDefault("genai_project", "")
	v.SetDefault("genai_location", "")

	v.SetDefault("search_api", "https://api.duckduckgo.com/")
	v.SetDefault("search_api_key", "")
	v.SetDefault("search_cx", "")
	v.SetDefault("search_timeout", "5s")
	v.SetDefault("max_web_results", 10)
	v.SetDefault("default_resource_url", "https://www.example.com/resources")

	v.SetDefault("career_info_path", "")
	v.SetDefault("career_roadmap_path", "")

	v.SetDefault("redis_url", "")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "career.events")
}

// Load resolves configuration. Precedence, highest first: environment,
// .env, config file, defaults.
func Load(opts Options) (*Config, error) {
	if !opts.SkipDotEnv {
		loadEnvFile()
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}
	}

	return fromViper(v, opts.SkipAuth)
}

func fromViper(v *viper.Viper, skipAuth bool) (*Config, error) {
	cfg := &Config{
		Port:            v.GetInt("port"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),

		DatabaseURL:  v.GetString("database_url"),
		MaxOpenConns: v.GetInt("db_max_open_conns"),
		MaxIdleConns: v.GetInt("db_max_idle_conns"),

		Model: ModelConfig{
			ClassifierPath:          v.GetString("model_path"),
			LabelEncoderPath:        v.GetString("label_encoder_path"),
			SkillsVectorizerPath:    v.GetString("skill_vectorizer_path"),
			InterestsVectorizerPath: v.GetString("interest_vectorizer_path"),
			EducationMapPath:        v.GetString("education_map_path"),
			EducationDefault:        v.GetString("education_default"),
			TopK:                    v.GetInt("prediction_top_k"),
		},

		Storage: StorageConfig{
			Endpoint:  v.GetString("s3_endpoint"),
			Region:    v.GetString("s3_region"),
			AccessKey: v.GetString("s3_access_key"),
			SecretKey: v.GetString("s3_secret_key"),
		},
		ResumeBucket:   v.GetString("resume_bucket"),
		ResumeMaxBytes: v.GetInt64("resume_max_bytes"),

		LLM: LLMConfig{
			Providers:     splitList(strings.ToLower(v.GetString("llm_providers"))),
			Timeout:       v.GetDuration("llm_timeout"),
			OpenAIKey:     v.GetString("openai_api_key"),
			OpenAIModel:   v.GetString("openai_model"),
			OpenAIBaseURL: v.GetString("openai_base_url"),
			GeminiKey:     v.GetString("gemini_api_key"),
			GeminiModel:   v.GetString("gemini_model"),
			GenAIKey:      v.GetString("genai_api_key"),
			GenAIModel:    v.GetString("genai_model"),
			GenAIProject:  v.GetString("genai_project"),
			GenAILocation: v.GetString("genai_location"),
		},

		Search: SearchConfig{
			APIURL:             v.GetString("search_api"),
			APIKey:             v.GetString("search_api_key"),
			CX:                 v.GetString("search_cx"),
			Timeout:            v.GetDuration("search_timeout"),
			MaxWebResults:      v.GetInt("max_web_results"),
			DefaultResourceURL: strings.TrimRight(v.GetString("default_resource_url"), "/"),
		},

		CareerInfoPath:    v.GetString("career_info_path"),
		CareerRoadmapPath: v.GetString("career_roadmap_path"),

		RedisURL:     v.GetString("redis_url"),
		AMQPURL:      v.GetString("amqp_url"),
		AMQPExchange: v.GetString("amqp_exchange"),

		Viper: v,
	}

	if !skipAuth {
		jwtCfg, err := NewJWTConfig(v.GetString("jwt_secret"), v.GetInt("jwt_expiration_minutes"))
		if err != nil {
			return nil, err
		}
		cfg.JWT = jwtCfg

		pwCfg, err := NewPasswordConfig(v.GetInt("bcrypt_cost"), v.GetString("password_pepper"))
		if err != nil {
			return nil, err
		}
		cfg.Password = pwCfg
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}
	if c.Model.TopK < 1 {
		return fmt.Errorf("config error: 'prediction_top_k' must be at least 1")
	}
	if c.MaxOpenConns < 1 || c.MaxIdleConns < 0 {
		return fmt.Errorf("config error: database pool sizes must be positive")
	}
	if c.ResumeMaxBytes <= 0 {
		return fmt.Errorf("config error: 'resume_max_bytes' must be positive")
	}
	if c.LLM.Timeout <= 0 || c.Search.Timeout <= 0 {
		return fmt.Errorf("config error: timeouts must be positive")
	}
	for _, p := range c.LLM.Providers {
		switch p {
		case "openai", "gemini", "genai":
		default:
			return fmt.Errorf("config error: unknown LLM provider %q", p)
		}
	}
	return nil
}

// loadEnvFile loads the first .env found in the working directory or the
// module root. Missing files are not an error.
func loadEnvFile() {
	paths := []string{".env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
