package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Storage backends understood by database.Open.
const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
)

// Config is read once per process and passed by value to every component
// that needs it. Nothing reads the environment after Load returns.
type Config struct {
	AppEnv         string `yaml:"app_env"`
	AppPort        string `yaml:"app_port"`
	AllowedOrigins string `yaml:"allowed_origins"`

	Region        string `yaml:"region"`
	Table         string `yaml:"table"`
	DynamoDBHost  string `yaml:"dynamodb_host"`
	UserIndex     string `yaml:"user_index"`
	NotebookIndex string `yaml:"notebook_index"`

	StorageBackend string `yaml:"storage_backend"`
	DBHost         string `yaml:"db_host"`
	DBPort         string `yaml:"db_port"`
	DBUser         string `yaml:"db_user"`
	DBPassword     string `yaml:"db_password"`
	DBName         string `yaml:"db_name"`
	DBMaxIdleConns int    `yaml:"db_max_idle_conns"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns"`
	SQLitePath     string `yaml:"sqlite_path"`
	BadgerPath     string `yaml:"badger_path"`

	NATSURL       string `yaml:"nats_url"`
	EventsSubject string `yaml:"events_subject"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func defaults() Config {
	return Config{
		AppEnv:         "development",
		AppPort:        "8080",
		AllowedOrigins: "*",
		StorageBackend: BackendDynamoDB,
		DBHost:         "localhost",
		DBPort:         "5432",
		DBUser:         "notes",
		DBPassword:     "notes",
		DBName:         "notes",
		DBMaxIdleConns: 10,
		DBMaxOpenConns: 100,
		SQLitePath:     "notes.db",
		EventsSubject:  "note_events",
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and finally the environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	// AWS_REGION is what the Lambda runtime sets; AWS_DEFAULT_REGION wins when both exist.
	region := getEnv("AWS_REGION", cfg.Region)

	cfg = Config{
		AppEnv:         getEnv("APP_ENV", cfg.AppEnv),
		AppPort:        getEnv("APP_PORT", cfg.AppPort),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", cfg.AllowedOrigins),
		Region:         getEnv("AWS_DEFAULT_REGION", region),
		Table:          getEnv("DYNAMODB_TABLE", cfg.Table),
		DynamoDBHost:   getEnv("DYNAMODB_HOST", cfg.DynamoDBHost),
		UserIndex:      getEnv("USER_INDEX", cfg.UserIndex),
		NotebookIndex:  getEnv("NOTEBOOK_INDEX", cfg.NotebookIndex),
		StorageBackend: getEnv("STORAGE_BACKEND", cfg.StorageBackend),
		DBHost:         getEnv("DB_HOST", cfg.DBHost),
		DBPort:         getEnv("DB_PORT", cfg.DBPort),
		DBUser:         getEnv("DB_USER", cfg.DBUser),
		DBPassword:     getEnv("DB_PASSWORD", cfg.DBPassword),
		DBName:         getEnv("DB_NAME", cfg.DBName),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns),
		SQLitePath:     getEnv("SQLITE_PATH", cfg.SQLitePath),
		BadgerPath:     getEnv("BADGER_PATH", cfg.BadgerPath),
		NATSURL:        getEnv("NATS_URL", cfg.NATSURL),
		EventsSubject:  getEnv("EVENTS_SUBJECT", cfg.EventsSubject),
		LogLevel:       getEnv("LOG_LEVEL", cfg.LogLevel),
		LogFile:        getEnv("LOG_FILE", cfg.LogFile),
	}

	return cfg, nil
}

// LoadFile overlays the YAML document at path on base. Keys missing from the
// file keep the value from base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// UserIndexName is the secondary index keyed by userId with noteId as range key.
func (c Config) UserIndexName() string {
	if c.UserIndex != "" {
		return c.UserIndex
	}
	return c.Table + "-userid-noteid-index"
}

// NotebookIndexName is the secondary index keyed by notebook with noteId as range key.
func (c Config) NotebookIndexName() string {
	if c.NotebookIndex != "" {
		return c.NotebookIndex
	}
	return c.Table + "-notebook-noteid-index"
}

// MigrateOnOpen reports whether relational schemas are migrated when the
// store is opened. Production deployments run `notes migrate` instead.
func (c Config) MigrateOnOpen() bool {
	return c.AppEnv != "production"
}

// PostgresDSN is the connection string used by the postgres backend.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
	)
}
