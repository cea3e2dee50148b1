package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverAuto     = "auto"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

const (
	DefaultUnknownAuthorDisplayName = "Repository Owner"
	DefaultWorkerInsertRPS          = 20
	DefaultWorkerQueue              = "repofeed-workers"
)

type Config struct {
	Env      string
	HTTPAddr string
	Log      string

	StoreDriver string

	MongoURI      string
	MongoDatabase string

	DBURL       string
	SQLitePath  string
	RedisURL    string
	AutoMigrate bool

	NATSURL string

	CORSAllowOrigins string

	// Shown in the feed instead of the "Unknown" author sentinel.
	UnknownAuthorDisplayName string

	WorkerInsertRPS int
	WorkerQueue     string
}

// Load reads configuration from the optional CONFIG_FILE overlay and the
// environment. Environment variables win over the file.
func Load() (Config, error) {
	var f File
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		var err error
		if f, err = LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	return fromFile(f), nil
}

func fromFile(f File) Config {
	env := getEnv("APP_ENV", or(f.Env, "dev"))
	logLevel := getEnv("LOG_LEVEL", or(f.LogLevel, "info"))

	// Prefer HTTP_ADDR if provided, otherwise build it from PORT.
	httpAddr := getEnv("HTTP_ADDR", f.HTTPAddr)
	if strings.TrimSpace(httpAddr) == "" {
		port := getEnv("PORT", or(f.Port, "8080"))
		httpAddr = ":" + port
	}

	return Config{
		Env:      env,
		HTTPAddr: httpAddr,
		Log:      logLevel,

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", or(f.Store.Driver, DriverAuto))),

		MongoURI:      getEnv("MONGO_URI", f.Store.MongoURI),
		MongoDatabase: getEnv("MONGO_DATABASE", f.Store.MongoDatabase),

		DBURL:       getEnv("DB_URL", f.Store.DBURL),
		SQLitePath:  getEnv("SQLITE_PATH", f.Store.SQLitePath),
		RedisURL:    getEnv("REDIS_URL", f.Store.RedisURL),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", f.Store.AutoMigrate),

		NATSURL: getEnv("NATS_URL", f.NATSURL),

		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", or(f.CORSAllowOrigins, "*")),

		UnknownAuthorDisplayName: getEnv("UNKNOWN_AUTHOR_DISPLAY_NAME", or(f.UnknownAuthorDisplayName, DefaultUnknownAuthorDisplayName)),

		WorkerInsertRPS: getEnvInt("WORKER_INSERT_RPS", orInt(f.Worker.InsertRPS, DefaultWorkerInsertRPS)),
		WorkerQueue:     getEnv("WORKER_QUEUE", or(f.Worker.Queue, DefaultWorkerQueue)),
	}
}

func (c Config) IsDev() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// HasStore reports whether any persistent store is configured.
func (c Config) HasStore() bool {
	switch c.StoreDriver {
	case DriverMemory:
		return true
	case DriverMongo:
		return c.MongoURI != ""
	case DriverPostgres:
		return c.DBURL != ""
	case DriverSQLite:
		return c.SQLitePath != ""
	case DriverRedis:
		return c.RedisURL != ""
	}
	return c.MongoURI != "" || c.DBURL != "" || c.SQLitePath != "" || c.RedisURL != ""
}

var errNoStore = errors.New("no event store configured: set MONGO_URI, DB_URL, SQLITE_PATH or REDIS_URL")

// Validate rejects configurations the processes cannot run with. Outside
// development a store is mandatory.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverAuto, DriverMongo, DriverPostgres, DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.WorkerInsertRPS <= 0 {
		return fmt.Errorf("WORKER_INSERT_RPS must be positive, got %d", c.WorkerInsertRPS)
	}
	if !c.IsDev() && !c.HasStore() {
		return errNoStore
	}
	if !c.IsDev() && c.StoreDriver == DriverMemory {
		return fmt.Errorf("memory store is only allowed in development (APP_ENV=%s)", c.Env)
	}
	return nil
}

func (c Config) LogLevel() slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(c.Log)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		// Allow numeric levels for easy tweaking (-4 debug, 0 info, 4 warn, 8 error).
		if n, err := strconv.Atoi(c.Log); err == nil {
			return slog.Level(n)
		}
		return slog.LevelInfo
	}
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
