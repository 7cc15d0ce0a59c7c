// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env     string // application environment (e.g. "dev", "prod")
	Port    string // HTTP port to listen on
	Service string // service name attached to log lines

	LogLevel  string // zap level: debug, info, warn, error
	LogFormat string // json or console

	DBUser            string        // database username
	DBPass            string        // database password (optional)
	DBHost            string        // database host address
	DBPort            string        // database port number
	DBName            string        // database name
	DBConnectAttempts int           // connection attempts before giving up
	DBConnectBackoff  time.Duration // delay step between connection attempts
	DBAutoMigrate     bool          // create tables on startup

	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	QRSecret string        // secret used to sign check-in QR tokens
	QRTTL    time.Duration // lifetime of a QR token

	DefaultReservationStatus string         // status assigned to new reservations
	Location                 *time.Location // time zone that defines a calendar day

	RabbitURL   string // AMQP broker URL; empty disables events
	EventLogDir string // directory the event consumer appends to
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:     must("APP_ENV"),
		Port:    must("APP_PORT"),
		Service: envStr("APP_SERVICE_NAME", "study-room-reservation"),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),

		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"),
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		DBConnectAttempts: envInt("DB_CONNECT_ATTEMPTS", 5),
		DBConnectBackoff:  envDur("DB_CONNECT_BACKOFF", 2*time.Second),
		DBAutoMigrate:     envBool("DB_AUTO_MIGRATE", true),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		QRSecret: envStr("QR_SECRET", ""),
		QRTTL:    envDur("QR_TTL", 300*time.Second),

		DefaultReservationStatus: envStr("RESERVATION_DEFAULT_STATUS", "confirmed"),

		RabbitURL:   envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventLogDir: envStr("EVENT_LOG_DIR", "logs"),
	}
	if cfg.QRSecret == "" {
		cfg.QRSecret = cfg.JWTSecret
	}
	switch cfg.DefaultReservationStatus {
	case "pending", "confirmed":
	default:
		log.Fatalf("invalid RESERVATION_DEFAULT_STATUS: %q", cfg.DefaultReservationStatus)
	}
	tz := envStr("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", tz, err)
	}
	cfg.Location = loc
	if cfg.DBConnectAttempts < 1 {
		cfg.DBConnectAttempts = 1
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
