package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendGCS    = "gcs"
	BackendMinio  = "minio"
)

// DevSessionSecret is a well-known signing secret for local development. It is
// rejected unless SESSION_ALLOW_DEV_SECRET is set.
const DevSessionSecret = "devsecret"

// Config contains server configuration parameters.
type Config struct {
	HTTP      HTTP      `envPrefix:"HTTP_"`
	Database  Database  `envPrefix:"DB_"`
	Storage   Storage   `envPrefix:"STORAGE_"`
	Google    Google    `envPrefix:"GOOGLE_"`
	Session   Session   `envPrefix:"SESSION_"`
	Extractor Extractor `envPrefix:"EXTRACTOR_"`
	Audit     Audit     `envPrefix:"AUDIT_"`
	Analytics Analytics `envPrefix:"ANALYTICS_"`
	Log       Log       `envPrefix:"LOG_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	AllowedOrigin  string        `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// Database contains database connection parameters. An empty DSN selects the
// in-memory stores.
type Database struct {
	DSN      string `env:"DSN"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"10"`
}

// Storage contains blob storage parameters.
type Storage struct {
	Backend        string `env:"BACKEND" envDefault:"memory"`
	Bucket         string `env:"BUCKET" envDefault:"fintrackr-statements"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// Google contains Google sign-in and cloud credentials.
type Google struct {
	ClientID        string `env:"CLIENT_ID"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// Session contains session token parameters.
type Session struct {
	Secret         string        `env:"SECRET"`
	AllowDevSecret bool          `env:"ALLOW_DEV_SECRET" envDefault:"false"`
	TTL            time.Duration `env:"TTL" envDefault:"24h"`
	Issuer         string        `env:"ISSUER" envDefault:"fintrackr"`
}

// Extractor contains statement extractor parameters.
type Extractor struct {
	Command   string        `env:"COMMAND" envDefault:"python3"`
	Args      []string      `env:"ARGS" envDefault:"backend/read_pdf.py" envSeparator:" "`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"60s"`
	Workers   int           `env:"WORKERS" envDefault:"4"`
	QueueSize int           `env:"QUEUE_SIZE" envDefault:"32"`
}

// Audit contains parsing-run audit parameters. An empty project disables auditing.
type Audit struct {
	ProjectID string `env:"PROJECT_ID"`
	Dataset   string `env:"DATASET" envDefault:"fintrackr"`
}

// Analytics contains AI analytics parameters.
type Analytics struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Model   string `env:"MODEL" envDefault:"gemini-2.5-flash"`
}

// Log contains logging parameters.
type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"console"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendGCS, BackendMinio:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: want memory, gcs or minio", c.Storage.Backend)
	}

	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Extractor.Workers <= 0 {
		return fmt.Errorf("EXTRACTOR_WORKERS must be positive")
	}
	if c.Extractor.QueueSize < 0 {
		return fmt.Errorf("EXTRACTOR_QUEUE_SIZE must not be negative")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.Session.Secret == DevSessionSecret && !c.Session.AllowDevSecret {
		return fmt.Errorf("SESSION_SECRET is the development secret: set SESSION_ALLOW_DEV_SECRET=true to use it")
	}

	return nil
}
