package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Supported values for [DatabaseConfig.Driver].
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config represents the application configuration loaded from a TOML file.
//
// It is built once at startup and passed by reference to the components that need it.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
//
// Path is only read by the sqlite3 driver; the remaining connection fields only by postgres.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Name         string `toml:"name"`
	SSLMode      string `toml:"sslmode"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	RateLimit    float64  `toml:"rate_limit"` // requests per second, 0 disables limiting
	RateBurst    int      `toml:"rate_burst"`
	AutoMigrate  bool     `toml:"auto_migrate"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps [time.Duration] so it can be written as "5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, text)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DSN returns the data source name handed to [sql.Open] for the configured driver.
func (d DatabaseConfig) DSN() (string, error) {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return "", fmt.Errorf("%w: database.path is required for %s", ErrInvalidConfig, d.Driver)
		}
		return d.Path, nil
	case DriverPostgres:
		fields := []string{
			"host=" + quoteDSNValue(d.Host),
			"port=" + strconv.Itoa(d.Port),
			"user=" + quoteDSNValue(d.Username),
			"password=" + quoteDSNValue(d.Password),
			"dbname=" + quoteDSNValue(d.Name),
		}
		if d.SSLMode != "" {
			fields = append(fields, "sslmode="+quoteDSNValue(d.SSLMode))
		}
		return strings.Join(fields, " "), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, d.Driver)
	}
}

// quoteDSNValue quotes a libpq keyword/value when it is empty or holds spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// ApplyEnv overlays database settings from the environment onto the config.
//
// lookup is usually [os.LookupEnv]; it is a parameter so the environment is read exactly once, by the caller.
// Recognized variables: DATABASE_DRIVER, DATABASE_HOST, DATABASE_PORT, DATABASE_USERNAME, DATABASE_PASSWORD, DATABASE_NAME.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for key, dst := range map[string]*string{
		"DATABASE_DRIVER":   &c.Database.Driver,
		"DATABASE_HOST":     &c.Database.Host,
		"DATABASE_USERNAME": &c.Database.Username,
		"DATABASE_PASSWORD": &c.Database.Password,
		"DATABASE_NAME":     &c.Database.Name,
	} {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("DATABASE_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DATABASE_PORT=%q", ErrInvalidConfig, v)
		}
		c.Database.Port = port
	}

	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
