package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup. The pipeline base address is the only
// environment-derived behavior the core depends on; everything else tunes
// ambient concerns.
type Config struct {
	APIPort   string `envconfig:"API_PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	PipelineBaseURL        string `envconfig:"PIPELINE_BASE_URL" default:"http://localhost:8000"`
	PipelineLLMID          string `envconfig:"PIPELINE_LLM_ID" default:""`
	PipelineTimeoutSeconds int    `envconfig:"PIPELINE_TIMEOUT_SECONDS" default:"120"`

	AnswerFields     string `envconfig:"ANSWER_FIELDS" default:"answer,output,message,text,result"`
	DocIDPrefix      string `envconfig:"DOC_ID_PREFIX" default:"doc"`
	AutoIndexDefault bool   `envconfig:"AUTO_INDEX_DEFAULT" default:"true"`
	SearchTopK       int    `envconfig:"SEARCH_TOP_K" default:"5"`

	SessionTTLMinutes int   `envconfig:"SESSION_TTL_MINUTES" default:"60"`
	MaxUploadSizeMB   int64 `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`

	GatewayRetryMaxAttempts int  `envconfig:"GATEWAY_RETRY_MAX_ATTEMPTS" default:"1"`
	GatewayBreakerEnabled   bool `envconfig:"GATEWAY_BREAKER_ENABLED" default:"false"`

	NATSURL     string `envconfig:"NATS_URL" default:""`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"documents.indexed"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// AnswerFieldList splits the configured probe order.
func (c Config) AnswerFieldList() []string {
	parts := strings.Split(c.AnswerFields, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) PipelineTimeout() time.Duration {
	return time.Duration(c.PipelineTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB << 20
}
