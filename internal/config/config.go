package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the rest
// fall back to defaults that work for local development.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Storage StorageConfig
	Match   MatchConfig
	Geo     GeoConfig

	CORSOrigins []string // allowed origins for the mobile/web client

	RabbitMQURL string // match events are published only when set
	EventLogDir string // directory of the consumer's match.log
}

// StorageConfig selects the key/value backend that holds the match collection.
type StorageConfig struct {
	Driver   string // "redis" or "bolt"
	Key      string // key under which the whole collection is stored
	BoltPath string // bbolt file used when Driver is "bolt"
}

// MatchConfig carries the rules applied to match records.
type MatchConfig struct {
	Timezone string        // IANA zone used to interpret DD/MM/YYYY HH:MM
	Grace    time.Duration // how long after its start a match stays visible
}

// GeoConfig configures the postal code and geocoding lookups.
type GeoConfig struct {
	ViaCEPURL      string
	OpenCageURL    string
	OpenCageAPIKey string
	CachePath      string
	Timeout        time.Duration
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables cause the program to exit with a fatal
// log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		Storage:        LoadStorageConfig(),
		Match:          LoadMatchConfig(),
		Geo:            LoadGeoConfig(),
		CORSOrigins:    splitList(envStr("CORS_ORIGINS", "*")),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventLogDir:    envStr("EVENT_LOG_DIR", "logs"),
	}
}

// LoadStorageConfig reads STORAGE_DRIVER, STORAGE_KEY and BOLT_PATH.
func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		Driver:   strings.ToLower(envStr("STORAGE_DRIVER", "redis")),
		Key:      envStr("STORAGE_KEY", "partidas"),
		BoltPath: envStr("BOLT_PATH", "data/partidas.db"),
	}
}

// LoadMatchConfig reads MATCH_TIMEZONE and MATCH_GRACE.
func LoadMatchConfig() MatchConfig {
	return MatchConfig{
		Timezone: envStr("MATCH_TIMEZONE", "America/Sao_Paulo"),
		Grace:    envDur("MATCH_GRACE", time.Hour),
	}
}

// Location resolves the configured time zone, falling back to UTC when the
// zone database does not know it.
func (m MatchConfig) Location() *time.Location {
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		log.Printf("unknown MATCH_TIMEZONE %q, using UTC", m.Timezone)
		return time.UTC
	}
	return loc
}

// LoadGeoConfig reads the ViaCEP/OpenCage endpoints and the lookup timeout.
func LoadGeoConfig() GeoConfig {
	return GeoConfig{
		ViaCEPURL:      envStr("VIACEP_URL", "https://viacep.com.br/ws"),
		OpenCageURL:    envStr("OPENCAGE_URL", "https://api.opencagedata.com/geocode/v1/json"),
		OpenCageAPIKey: os.Getenv("OPENCAGE_API_KEY"),
		CachePath:      envStr("GEO_CACHE_PATH", "data/geocache.db"),
		Timeout:        envDur("LOOKUP_TIMEOUT", 10*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
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

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
