package config

import (
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Supabase   SupabaseConfig   `yaml:"supabase" mapstructure:"supabase"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" mapstructure:"retrieval"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Gateway    GatewayConfig    `yaml:"gateway" mapstructure:"gateway"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP server and its cross-origin policy.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	FrontendURL      string   `yaml:"frontend_url" mapstructure:"frontend_url"`
	AllowAllOrigins  bool     `yaml:"allow_all_origins" mapstructure:"allow_all_origins"`
	ReadTimeoutSecs  int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
}

// Origins returns the allow-listed origins with the frontend URL appended.
func (s ServerConfig) Origins() []string {
	origins := make([]string, 0, len(s.AllowedOrigins)+1)
	for _, o := range s.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}
	if fe := strings.TrimRight(strings.TrimSpace(s.FrontendURL), "/"); fe != "" && !slices.Contains(origins, fe) {
		origins = append(origins, fe)
	}
	return origins
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SupabaseConfig holds the project URL and credentials used for token
// verification.
type SupabaseConfig struct {
	URL        string `yaml:"url" mapstructure:"url"`
	ServiceKey string `yaml:"service_key" mapstructure:"service_key"`
	JWTSecret  string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	AuthMode   string `yaml:"auth_mode" mapstructure:"auth_mode"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RetrievalConfig selects how the retrieval call finds online sources.
type RetrievalConfig struct {
	Mode       string `yaml:"mode" mapstructure:"mode"`
	MaxQueries int    `yaml:"max_queries" mapstructure:"max_queries"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// GatewayConfig configures the model gateway calls.
type GatewayConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-call timeout; zero means none.
func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(g.TimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Retrieval modes.
const (
	RetrievalRecall = "recall"
	RetrievalSearch = "search"
	RetrievalSonar  = "sonar"
)

// Auth modes.
const (
	AuthRemote = "remote"
	AuthJWT    = "jwt"
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DOCSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.frontend_url", "")
	v.SetDefault("server.allow_all_origins", false)
	v.SetDefault("server.read_timeout_secs", 30)
	v.SetDefault("server.write_timeout_secs", 300)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("supabase.jwt_secret", "")
	v.SetDefault("supabase.auth_mode", AuthRemote)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("retrieval.mode", RetrievalRecall)
	v.SetDefault("retrieval.max_queries", 3)
	v.SetDefault("retrieval.max_results", 5)
	v.SetDefault("perplexity.key", "")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("gateway.timeout_secs", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present. Mode is
// one of "serve", "analyze" or "migrate".
func (c *Config) Validate(mode string) error {
	var problems []string
	need := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	needStore := func() {
		switch c.Store.Driver {
		case "postgres", "sqlite":
		default:
			problems = append(problems, "store.driver must be postgres or sqlite")
		}
		need(c.Store.DatabaseURL != "", "store.database_url is required")
	}

	needModels := func() {
		need(c.Anthropic.Key != "", "anthropic.key is required")
		switch c.Retrieval.Mode {
		case RetrievalRecall, RetrievalSearch:
		case RetrievalSonar:
			need(c.Perplexity.Key != "", "perplexity.key is required for retrieval.mode=sonar")
		default:
			problems = append(problems, "retrieval.mode must be recall, search or sonar")
		}
	}

	switch mode {
	case "serve":
		need(c.Server.Port > 0 && c.Server.Port <= 65535, "server.port must be between 1 and 65535")
		needStore()
		needModels()
		switch c.Supabase.AuthMode {
		case AuthRemote:
			need(c.Supabase.URL != "", "supabase.url is required for supabase.auth_mode=remote")
			need(c.Supabase.ServiceKey != "", "supabase.service_key is required for supabase.auth_mode=remote")
		case AuthJWT:
			need(c.Supabase.JWTSecret != "", "supabase.jwt_secret is required for supabase.auth_mode=jwt")
		default:
			problems = append(problems, "supabase.auth_mode must be remote or jwt")
		}
	case "analyze":
		needModels()
	case "migrate":
		needStore()
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
