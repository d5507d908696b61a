package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	Storage     StorageConfig     `yaml:"storage"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Backup      BackupConfig      `yaml:"backup"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// AuthConfig holds the shared secret guarding the API
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// StorageConfig selects and configures the document store
type StorageConfig struct {
	Backend         string         `yaml:"backend"`
	Document        string         `yaml:"document"`
	CreateIfMissing *bool          `yaml:"create_if_missing"`
	File            FileConfig     `yaml:"file"`
	Redis           RedisConfig    `yaml:"redis"`
	Postgres        PostgresConfig `yaml:"postgres"`
	Mongo           MongoConfig    `yaml:"mongo"`
}

// ShouldCreate reports whether an empty document is written at startup when none exists
func (c *StorageConfig) ShouldCreate() bool {
	return c.CreateIfMissing == nil || *c.CreateIfMissing
}

// FileConfig holds the local file backend settings
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MinConnections  int           `yaml:"min_connections"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// ConnectionString returns the PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	Collection     string        `yaml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// LeaderboardConfig holds leaderboard-specific configuration
type LeaderboardConfig struct {
	Levels int `yaml:"levels"`
}

// WebSocketConfig controls realtime pushes
type WebSocketConfig struct {
	BroadcastLimit int `yaml:"broadcast_limit"`
}

// KafkaConfig holds Kafka connection configuration
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
	Enabled bool     `yaml:"enabled"`
}

// BackupConfig holds backup worker configuration
type BackupConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Path     string        `yaml:"path"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// IsEnabled reports whether /metrics is served
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded into the environment first, without overriding
// variables that are already set. A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.Auth.APIKey = os.Getenv("API_KEY")
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration after expanding environment variables
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Auth.APIKey == "" {
		return errors.New("invalid config: auth.api_key must not be empty")
	}
	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendPostgres, BackendMongo:
	default:
		return fmt.Errorf("invalid config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Leaderboard.Levels < 1 {
		return fmt.Errorf("invalid config: leaderboard.levels must be positive, got %d", c.Leaderboard.Levels)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("invalid config: kafka.brokers must not be empty when kafka is enabled")
	}
	if c.Backup.Enabled && c.Backup.Path == "" {
		return errors.New("invalid config: backup.path must be set when backup is enabled")
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	// Storage defaults
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Document == "" {
		c.Storage.Document = "highscores"
	}
	if c.Storage.File.Path == "" {
		c.Storage.File.Path = "highscores.json"
	}

	r := &c.Storage.Redis
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
	if r.Key == "" {
		r.Key = "highscores:document"
	}
	if r.PoolSize == 0 {
		r.PoolSize = 10
	}
	if r.DialTimeout == 0 {
		r.DialTimeout = 5 * time.Second
	}
	if r.ReadTimeout == 0 {
		r.ReadTimeout = 3 * time.Second
	}
	if r.WriteTimeout == 0 {
		r.WriteTimeout = 3 * time.Second
	}

	p := &c.Storage.Postgres
	if p.Host == "" {
		p.Host = "localhost"
	}
	if p.Port == 0 {
		p.Port = 5432
	}
	if p.MaxConnections == 0 {
		p.MaxConnections = 10
	}
	if p.MinConnections == 0 {
		p.MinConnections = 1
	}
	if p.MaxConnLifetime == 0 {
		p.MaxConnLifetime = 1 * time.Hour
	}
	if p.MaxConnIdleTime == 0 {
		p.MaxConnIdleTime = 30 * time.Minute
	}

	m := &c.Storage.Mongo
	if m.URI == "" {
		m.URI = "mongodb://localhost:27017"
	}
	if m.Database == "" {
		m.Database = "highscore_board"
	}
	if m.Collection == "" {
		m.Collection = "documents"
	}
	if m.ConnectTimeout == 0 {
		m.ConnectTimeout = 10 * time.Second
	}

	// Leaderboard defaults
	if c.Leaderboard.Levels == 0 {
		c.Leaderboard.Levels = 4
	}
	if c.WebSocket.BroadcastLimit == 0 {
		c.WebSocket.BroadcastLimit = 10
	}

	// Kafka defaults
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "highscore-submissions"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "highscore-board"
	}

	// Backup defaults
	if c.Backup.Interval == 0 {
		c.Backup.Interval = 30 * time.Minute
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "highscores.backup.json"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
