package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"
)

// fallbackZone is used when the tz database has no entry for TIMEZONE.
var fallbackZone = time.FixedZone("AFT", 4*3600+30*60)

type Config struct {
	// Server
	Port        string   `envconfig:"PORT" default:"8080"`
	GinMode     string   `envconfig:"GIN_MODE" default:"release"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"text"`
	Timezone    string   `envconfig:"TIMEZONE" default:"Asia/Kabul"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	// Database
	DBDriver        string        `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN           string        `envconfig:"DB_DSN"`
	DBHost          string        `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort          string        `envconfig:"DB_PORT" default:"3306"`
	DBUser          string        `envconfig:"DB_USER" default:"parking_user"`
	DBPassword      string        `envconfig:"DB_PASSWORD"`
	DBName          string        `envconfig:"DB_NAME" default:"parking_db"`
	DBMaxRetries    int           `envconfig:"DB_MAX_RETRIES" default:"5"`
	DBRetryInterval time.Duration `envconfig:"DB_RETRY_INTERVAL" default:"5s"`

	// Sessions
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"1h"`

	// Billing
	DefaultHourlyRate float64 `envconfig:"DEFAULT_HOURLY_RATE" default:"5"`
	NightRate         float64 `envconfig:"NIGHT_RATE" default:"30"`
	PageSize          int     `envconfig:"PAGE_SIZE" default:"20"`
	SweepSchedule     string  `envconfig:"SWEEP_SCHEDULE" default:"*/10 * * * *"`

	// Admin seeding, skipped when email or password is empty
	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`
	SeedAdminRole     string `envconfig:"SEED_ADMIN_ROLE" default:"super-admin"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DefaultHourlyRate <= 0 {
		return fmt.Errorf("DEFAULT_HOURLY_RATE must be positive, got %v", c.DefaultHourlyRate)
	}
	if c.NightRate < 0 {
		return fmt.Errorf("NIGHT_RATE must not be negative, got %v", c.NightRate)
	}
	if c.PageSize <= 0 {
		c.PageSize = 20
	}
	if c.DBMaxRetries <= 0 {
		c.DBMaxRetries = 1
	}
	return nil
}

// DSN returns DB_DSN when set, otherwise a DSN assembled for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.Timezone)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return c.MySQLDSN()
	}
}

// MySQLDSN builds the go-sql-driver DSN: utf8mb4, parseTime and the local calendar.
func (c *Config) MySQLDSN() string {
	m := mysql.NewConfig()
	m.User = c.DBUser
	m.Passwd = c.DBPassword
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	m.DBName = c.DBName
	m.ParseTime = true
	m.Loc = time.Local
	m.Params = map[string]string{"charset": "utf8mb4"}
	return m.FormatDSN()
}

// Location resolves TIMEZONE, the calendar used for plan expiry and month boundaries.
func (c *Config) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallbackZone
	}
	return loc
}
