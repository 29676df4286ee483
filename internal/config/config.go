package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for asclepius.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP API and monitoring endpoints.
// - DataFile: Path of the clinic seed file; the built-in Johor list when empty.
// - ImageURL: Placeholder image stored with every seeded clinic.
// - Timeout: Upper bound for a single seeding run.
// - PushgatewayURL: Prometheus Pushgateway receiving the metrics of a seeding run; not pushed when empty.
// - Geocoder: Settings of the geocoding provider used for seeds without coordinates.
// - Store: Where seeded clinics are written.
type Config struct {
	Env            string
	Port           int
	DataFile       string
	ImageURL       string
	Timeout        time.Duration
	PushgatewayURL string
	Geocoder       GeocoderConfig
	Store          StoreConfig
}

// GeocoderConfig selects and tunes the geocoding provider.
type GeocoderConfig struct {
	ProviderType string // google, nominatim or none
	APIKey       string // Required for google
	Workers      int    // Concurrent geocoding workers
	Country      string // Region bias, ISO 3166-1 alpha-2
	Language     string
}

// StoreConfig describes the clinics table. Credentials only come from the environment.
type StoreConfig struct {
	Type     string // rest or postgres
	URL      string
	APIKey   string
	Table    string
	Database PostgresConfig
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the configuration from the environment, after loading a .env file if present.
// It panics when a numeric or duration value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	timeout, err := time.ParseDuration(v.GetString("ASCLEPIUS_TIMEOUT"))
	if err != nil {
		panic("failed to parse timeout from configuration")
	}

	port, err := strconv.Atoi(v.GetString("ASCLEPIUS_PORT"))
	if err != nil {
		panic("failed to parse port for HTTP server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("ASCLEPIUS_WORKERS"))
	if err != nil || workers < 1 {
		panic("failed to parse workers from configuration, must be a positive integer")
	}

	return &Config{
		Env:            v.GetString("ASCLEPIUS_ENV"),
		Port:           port,
		DataFile:       v.GetString("ASCLEPIUS_DATA_FILE"),
		ImageURL:       v.GetString("ASCLEPIUS_IMAGE_URL"),
		Timeout:        timeout,
		PushgatewayURL: v.GetString("ASCLEPIUS_PUSHGATEWAY_URL"),
		Geocoder: GeocoderConfig{
			ProviderType: v.GetString("ASCLEPIUS_PROVIDER_TYPE"),
			APIKey:       v.GetString("ASCLEPIUS_PROVIDER_KEY"),
			Workers:      workers,
			Country:      v.GetString("ASCLEPIUS_PROVIDER_COUNTRY"),
			Language:     v.GetString("ASCLEPIUS_PROVIDER_LANGUAGE"),
		},
		Store: StoreConfig{
			Type:   v.GetString("ASCLEPIUS_STORE_TYPE"),
			URL:    v.GetString("STORE_URL"),
			APIKey: v.GetString("STORE_API_KEY"),
			Table:  v.GetString("STORE_TABLE"),
			Database: PostgresConfig{
				Host:     v.GetString("DB_HOST"),
				Port:     v.GetString("DB_PORT"),
				User:     v.GetString("DB_USERNAME"),
				Password: v.GetString("DB_PASSWORD"),
				Name:     v.GetString("DB_NAME"),
			},
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ASCLEPIUS_ENV", "production")
	v.SetDefault("ASCLEPIUS_PORT", "8080")
	v.SetDefault("ASCLEPIUS_DATA_FILE", "")
	v.SetDefault("ASCLEPIUS_IMAGE_URL", "https://via.placeholder.com/150")
	v.SetDefault("ASCLEPIUS_TIMEOUT", "5m")
	v.SetDefault("ASCLEPIUS_PUSHGATEWAY_URL", "")
	v.SetDefault("ASCLEPIUS_WORKERS", "4")
	v.SetDefault("ASCLEPIUS_PROVIDER_TYPE", "nominatim")
	v.SetDefault("ASCLEPIUS_PROVIDER_KEY", "")
	v.SetDefault("ASCLEPIUS_PROVIDER_COUNTRY", "my")
	v.SetDefault("ASCLEPIUS_PROVIDER_LANGUAGE", "en")
	v.SetDefault("ASCLEPIUS_STORE_TYPE", "rest")
	v.SetDefault("STORE_URL", "")
	v.SetDefault("STORE_API_KEY", "")
	v.SetDefault("STORE_TABLE", "clinics")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USERNAME", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
}
