package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

// Environment variables read by NewDatabaseConfiguration.
const (
	EnvDBHost     = "FISHPASS_DB_HOST"
	EnvDBPort     = "FISHPASS_DB_PORT"
	EnvDBDatabase = "FISHPASS_DB_DATABASE"
	EnvDBUsername = "FISHPASS_DB_USERNAME"
	EnvDBPassword = "FISHPASS_DB_PASSWORD"
	EnvDBSchema   = "FISHPASS_DB_SCHEMA"
	EnvDBSSLMode  = "FISHPASS_DB_SSLMODE"
)

// Database holds a connection pool and the logger used by all handlers.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// DatabaseConfiguration describes how to reach the spatial store.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the environment.
// A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, NewError("load .env", err)
	}

	config := &DatabaseConfiguration{
		Host:     os.Getenv(EnvDBHost),
		Port:     os.Getenv(EnvDBPort),
		Database: os.Getenv(EnvDBDatabase),
		Username: os.Getenv(EnvDBUsername),
		Password: os.Getenv(EnvDBPassword),
		Schema:   os.Getenv(EnvDBSchema),
		SSLMode:  os.Getenv(EnvDBSSLMode),
	}

	if len(strings.TrimSpace(config.Host)) == 0 ||
		len(strings.TrimSpace(config.Port)) == 0 ||
		len(strings.TrimSpace(config.Database)) == 0 ||
		len(strings.TrimSpace(config.Username)) == 0 ||
		len(strings.TrimSpace(config.Password)) == 0 {
		return nil, NewError("database configuration", fmt.Errorf("%s, %s, %s, %s and %s must be set", EnvDBHost, EnvDBPort, EnvDBDatabase, EnvDBUsername, EnvDBPassword))
	}

	if len(strings.TrimSpace(config.Schema)) == 0 {
		config.Schema = "public"
	}
	if len(strings.TrimSpace(config.SSLMode)) == 0 {
		config.SSLMode = "require"
	}

	return config, nil
}

// DataSourceName returns the lib/pq connection URL for the configuration.
func (c *DatabaseConfiguration) DataSourceName() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema+",public")
	u.RawQuery = q.Encode()
	return u.String()
}

// NewDatabase connects to the store described by dbConfig.
// It exits the process if no connection can be established.
func NewDatabase(name string, dbConfig *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := connect(dbConfig, 10, logger)
	if err != nil {
		log.Fatalf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", dbConfig.Host), slog.String("schema", dbConfig.Schema))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: db,
	}
}

// NewTestDatabase connects with a logger printing warnings and errors only.
func NewTestDatabase(dbConfig *DatabaseConfiguration) *Database {
	logger := NewLogger(os.Stdout, slog.LevelWarn)
	return NewDatabase("test", dbConfig, logger)
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.Instance.Close()
}

func connect(dbConfig *DatabaseConfiguration, retries int, logger *slog.Logger) (*sql.DB, error) {
	connector, err := pq.NewConnector(dbConfig.DataSourceName())
	if err != nil {
		return nil, NewError("create connector", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return db, nil
		}
		logger.Warn("Database not ready, retrying", slog.Int("attempt", i+1), slog.String("error", err.Error()))
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}

	db.Close()
	return nil, NewError("ping database", err)
}
