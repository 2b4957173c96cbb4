package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// EthereumConfig holds Ethereum-specific configuration
type EthereumConfig struct {
	RPCURL               string         `mapstructure:"rpc_url"`
	ChainID              domain.ChainID `mapstructure:"chain_id"`
	BlockHeadTTL         time.Duration  `mapstructure:"block_head_ttl"`
	BlockHeadStaleWindow time.Duration  `mapstructure:"block_head_stale_window"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	TaskQueue                          string  `mapstructure:"task_queue"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int     `mapstructure:"max_concurrent_activity_task_pollers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSAllowedOrigins restricts browser origins; empty allows all
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize int `mapstructure:"pool_size"`
}

// IndexingConfig holds the tunables of snapshotting and live tailing
type IndexingConfig struct {
	ReorgDepth          uint64        `mapstructure:"reorg_depth"`
	MulticallAddress    string        `mapstructure:"multicall_address"`
	TokenByIndexBatch   int           `mapstructure:"token_by_index_batch"`
	OwnerOfBatch        int           `mapstructure:"owner_of_batch"`
	ProbeBatch          int           `mapstructure:"probe_batch"`
	ProbeStopAfterEmpty int           `mapstructure:"probe_stop_after_empty"`
	MaxIDs              int           `mapstructure:"max_ids"`
	PunksSupply         int           `mapstructure:"punks_supply"`
	LockStaleAfter      time.Duration `mapstructure:"lock_stale_after"`
	UpsertChunkSize     int           `mapstructure:"upsert_chunk_size"`
	BestBlockRetries    int           `mapstructure:"best_block_retries"`
	BestBlockBackoff    time.Duration `mapstructure:"best_block_backoff"`
	SnapshotsPerCycle   int           `mapstructure:"snapshots_per_cycle"`
	LiveTailRange       uint64        `mapstructure:"live_tail_range"`
	LiveTailBatch       int           `mapstructure:"live_tail_batch"`
	LiveTail            WorkerConfig  `mapstructure:"live_tail"`
}

// GrantsConfig holds grant admission configuration
type GrantsConfig struct {
	ReviewBudget time.Duration `mapstructure:"review_budget"`
}

// ScheduleConfig holds the intervals of the periodic cycles
type ScheduleConfig struct {
	SnapshotInterval    time.Duration `mapstructure:"snapshot_interval"`
	LiveTailInterval    time.Duration `mapstructure:"live_tail_interval"`
	GrantReviewInterval time.Duration `mapstructure:"grant_review_interval"`
	RateReviewInterval  time.Duration `mapstructure:"rate_review_interval"`
	GrantKinds          []string      `mapstructure:"grant_kinds"`
}

// WorkerCoreConfig holds configuration for worker-core
type WorkerCoreConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Indexing   IndexingConfig `mapstructure:"indexing"`
	Grants     GrantsConfig   `mapstructure:"grants"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig `mapstructure:",squash"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Schedule   ScheduleConfig `mapstructure:"schedule"`
}

// LoadWorkerCoreConfig loads configuration for worker-core
func LoadWorkerCoreConfig(configFile string, envPath string) (*WorkerCoreConfig, error) {
	v := configureViper("worker-core", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	setTemporalDefaults(v)
	v.SetDefault("ethereum.chain_id", int64(domain.ChainEthereumMainnet))
	v.SetDefault("ethereum.block_head_ttl", "12s")
	v.SetDefault("ethereum.block_head_stale_window", "60s")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "COLLECTION_INDEXING")
	v.SetDefault("nats.connection_name", "worker-core")
	setIndexingDefaults(v)
	v.SetDefault("grants.review_budget", "10m")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config WorkerCoreConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Ethereum.RPCURL == "" {
		return nil, errors.New("ethereum.rpc_url is required")
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	setTemporalDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	setTemporalDefaults(v)
	v.SetDefault("schedule.snapshot_interval", "1m")
	v.SetDefault("schedule.live_tail_interval", "30s")
	v.SetDefault("schedule.grant_review_interval", "1m")
	v.SetDefault("schedule.rate_review_interval", "10m")
	v.SetDefault("schedule.grant_kinds", []string{string(domain.GrantKindTDH), string(domain.GrantKindXTDH)})

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, kind := range cfg.Schedule.GrantKinds {
		if !domain.IsValidGrantKind(domain.GrantKind(kind)) {
			return nil, fmt.Errorf("unsupported grant kind in schedule.grant_kinds: %s", kind)
		}
	}

	return &cfg, nil
}

func setTemporalDefaults(v *viper.Viper) {
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "collection-indexing")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 20)
	v.SetDefault("temporal.worker_activities_per_second", 20)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 4)
}

func setIndexingDefaults(v *viper.Viper) {
	v.SetDefault("indexing.reorg_depth", 12)
	v.SetDefault("indexing.multicall_address", domain.DEFAULT_MULTICALL_ADDRESS)
	v.SetDefault("indexing.token_by_index_batch", 300)
	v.SetDefault("indexing.owner_of_batch", 150)
	v.SetDefault("indexing.probe_batch", 64)
	v.SetDefault("indexing.probe_stop_after_empty", 500)
	v.SetDefault("indexing.max_ids", 250000)
	v.SetDefault("indexing.punks_supply", 10000)
	v.SetDefault("indexing.lock_stale_after", "16m")
	v.SetDefault("indexing.upsert_chunk_size", 1000)
	v.SetDefault("indexing.best_block_retries", 3)
	v.SetDefault("indexing.best_block_backoff", "500ms")
	v.SetDefault("indexing.snapshots_per_cycle", 1)
	v.SetDefault("indexing.live_tail_range", 2000)
	v.SetDefault("indexing.live_tail_batch", 100)
	v.SetDefault("indexing.live_tail.pool_size", 4)
}

// readConfig reads the config file, tolerating a missing one so env vars alone can configure a service
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.block_head_ttl",
		"ethereum.block_head_stale_window",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Indexing
		"indexing.reorg_depth",
		"indexing.multicall_address",
		"indexing.token_by_index_batch",
		"indexing.owner_of_batch",
		"indexing.probe_batch",
		"indexing.probe_stop_after_empty",
		"indexing.max_ids",
		"indexing.punks_supply",
		"indexing.lock_stale_after",
		"indexing.upsert_chunk_size",
		"indexing.best_block_retries",
		"indexing.best_block_backoff",
		"indexing.snapshots_per_cycle",
		"indexing.live_tail_range",
		"indexing.live_tail_batch",
		"indexing.live_tail.pool_size",
		// Grants
		"grants.review_budget",
		// Schedule
		"schedule.snapshot_interval",
		"schedule.live_tail_interval",
		"schedule.grant_review_interval",
		"schedule.rate_review_interval",
		"schedule.grant_kinds",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
