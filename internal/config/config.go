// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables,
// an optional JSON file and an optional .env file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by the -storage and -sessions flags.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"addr"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// UserStorage selects where user records live: postgres or memory.
	UserStorage string `json:"user_storage"`

	// SessionStorage selects the session backend: postgres, redis or memory.
	SessionStorage string `json:"session_storage"`

	// RedisAddr is the host:port of the Redis server used for sessions.
	RedisAddr string `json:"redis_addr"`

	// RedisPassword authenticates to Redis. Read from REDIS_PASSWORD only.
	RedisPassword string `json:"-"`

	// SessionTTL is how long a login session stays valid.
	SessionTTL time.Duration `json:"session_ttl"`

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool `json:"secure_cookies"`

	// TLSDir, when set, switches the server to HTTPS using server.crt and
	// server.key from this directory. Missing files are generated.
	TLSDir string `json:"tls_dir"`

	// StudentID is rendered on the login page in the #student-id header.
	StudentID string `json:"student_id"`

	// LogLevel is passed to the zap logger.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses the process command-line flags and environment variables.
// It exits the process on invalid input, the same way flag.Parse does.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// ParseArgs builds Options from defaults, then the JSON config file, then
// args, then environment variables (highest priority). A .env file in the
// working directory, if present, is loaded into the environment first.
func ParseArgs(args []string) (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	options := &Options{}

	fset := flag.NewFlagSet("authportal", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&options.Addr, "a", "127.0.0.1:8000", "run on ip:port server")
	fset.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fset.StringVar(&options.UserStorage, "storage", BackendPostgres, "user storage: postgres | memory")
	fset.StringVar(&options.SessionStorage, "sessions", BackendPostgres, "session storage: postgres | redis | memory")
	fset.StringVar(&options.RedisAddr, "redis", "localhost:6379", "redis address")
	fset.DurationVar(&options.SessionTTL, "session-ttl", 14*24*time.Hour, "session lifetime")
	fset.BoolVar(&options.SecureCookies, "secure-cookies", false, "set Secure on session cookie")
	fset.StringVar(&options.TLSDir, "tls-dir", "", "serve HTTPS with certificates from this directory")
	fset.StringVar(&options.StudentID, "student-id", "", "student id shown on the login page")
	fset.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fset.StringVar(&options.Config, "config", "config.json", "path to config file")
	fset.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := loadFile(options.Config, options); err != nil {
			return nil, err
		}
		// Explicit flags beat the file.
		if err := fset.Parse(args); err != nil {
			return nil, err
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		options.RedisAddr = redisAddr
	}
	options.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if tlsDir := os.Getenv("TLS_DIR"); tlsDir != "" {
		options.TLSDir = tlsDir
	}
	if studentID := os.Getenv("STUDENT_ID"); studentID != "" {
		options.StudentID = studentID
	}

	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// fileOptions mirrors Options for JSON decoding so that durations can be
// written as strings ("336h").
type fileOptions struct {
	*Options
	SessionTTL string `json:"session_ttl"`
}

func loadFile(path string, options *Options) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	fo := fileOptions{Options: options}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.SessionTTL != "" {
		ttl, err := time.ParseDuration(fo.SessionTTL)
		if err != nil {
			return fmt.Errorf("error while parsing session_ttl: %w", err)
		}
		options.SessionTTL = ttl
	}
	return nil
}

func (o *Options) validate() error {
	switch o.UserStorage {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown user storage %q", o.UserStorage)
	}
	switch o.SessionStorage {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown session storage %q", o.SessionStorage)
	}
	if o.SessionStorage == BackendPostgres && o.UserStorage != BackendPostgres {
		return errors.New("postgres sessions require postgres user storage")
	}
	if o.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}
