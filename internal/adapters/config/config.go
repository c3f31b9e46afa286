package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"fincoach/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	AI            AIConfig
	RAG           RAGConfig
	Guardrails    GuardrailsConfig
	Conversation  ConversationConfig
	MarketData    MarketDataConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"fincoach"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type HTTPConfig struct {
	Host            string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	OpenAIKey      string  `envconfig:"OPENAI_API_KEY" required:"true"`
	Model          string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string  `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	Temperature    float64 `envconfig:"OPENAI_TEMPERATURE" default:"0.3"`
	MaxTokens      int     `envconfig:"OPENAI_MAX_TOKENS" default:"1024"`
	// LLMRouting enables model-based intent routing with keyword fallback.
	LLMRouting bool `envconfig:"LLM_ROUTING_ENABLED" default:"false"`
}

type RAGConfig struct {
	TopK         int     `envconfig:"RAG_TOP_K" default:"5"`
	MinRelevance float64 `envconfig:"RAG_MIN_RELEVANCE" default:"0.5"`
}

type GuardrailsConfig struct {
	MinQueryLength    int           `envconfig:"GUARDRAILS_MIN_QUERY_LENGTH" default:"3"`
	MaxQueryLength    int           `envconfig:"GUARDRAILS_MAX_QUERY_LENGTH" default:"5000"`
	AgentTimeout      time.Duration `envconfig:"GUARDRAILS_AGENT_TIMEOUT" default:"30s"`
	WorkflowTimeout   time.Duration `envconfig:"GUARDRAILS_WORKFLOW_TIMEOUT" default:"60s"`
	MaxParallelAgents int           `envconfig:"GUARDRAILS_MAX_PARALLEL_AGENTS" default:"3"`
	QueriesPerMinute  int           `envconfig:"GUARDRAILS_QUERIES_PER_MINUTE" default:"10"`
	QueriesPerHour    int           `envconfig:"GUARDRAILS_QUERIES_PER_HOUR" default:"100"`
	QueriesPerDay     int           `envconfig:"GUARDRAILS_QUERIES_PER_DAY" default:"500"`
}

type ConversationConfig struct {
	MaxHistory       int           `envconfig:"CONVERSATION_MAX_HISTORY" default:"20"`
	SummaryThreshold int           `envconfig:"CONVERSATION_SUMMARY_THRESHOLD" default:"10"`
	SummaryLength    int           `envconfig:"CONVERSATION_SUMMARY_LENGTH" default:"500"`
	SessionTTL       time.Duration `envconfig:"CONVERSATION_SESSION_TTL" default:"24h"`
}

type MarketDataConfig struct {
	QuoteTTL time.Duration `envconfig:"MARKET_DATA_QUOTE_TTL" default:"5m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
