package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files, skipping the ones that do not exist.
// It returns the number of files actually loaded.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}
	if len(existingFiles) == 0 {
		return 0, nil
	}
	return len(existingFiles), godotenv.Load(existingFiles...)
}

type ERPOptions struct {
	URL      string `env:"ERP_URL" envDefault:"http://localhost:8069"`
	Database string `env:"ERP_DB" envDefault:"erp"`
	Username string `env:"ERP_USERNAME"`
	Password string `env:"ERP_PASSWORD"`

	// Session manager tuning.
	AuthTimeout       time.Duration `env:"ERP_AUTH_TIMEOUT" envDefault:"15s"`
	SessionFreshFor   time.Duration `env:"ERP_SESSION_FRESH_FOR" envDefault:"5m"`
	HealthCheckEvery  time.Duration `env:"ERP_HEALTH_CHECK_EVERY" envDefault:"5m"`
	ConnectAttempts   int           `env:"ERP_CONNECT_ATTEMPTS" envDefault:"3"`
	MaxConnectBackoff time.Duration `env:"ERP_MAX_CONNECT_BACKOFF" envDefault:"5s"`
	FailureThreshold  int           `env:"ERP_FAILURE_THRESHOLD" envDefault:"2"`

	// Call executor tuning.
	CallTimeout  time.Duration `env:"ERP_CALL_TIMEOUT" envDefault:"60s"`
	CallAttempts int           `env:"ERP_CALL_ATTEMPTS" envDefault:"3"`
	RetryDelay   time.Duration `env:"ERP_RETRY_DELAY" envDefault:"2s"`
}

type CacheOptions struct {
	// Storage selects the result-cache backend. Reference and holiday
	// caches are always in-memory.
	Storage  string `env:"CACHE_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL string `env:"CACHE_REDIS_URL" envDefault:"redis://localhost:6379"`

	ResultTTL    time.Duration `env:"CACHE_RESULT_TTL" envDefault:"5m"`
	ReferenceTTL time.Duration `env:"CACHE_REFERENCE_TTL" envDefault:"1h"`
	HolidayTTL   time.Duration `env:"CACHE_HOLIDAY_TTL" envDefault:"1h"`
	SweepEvery   time.Duration `env:"CACHE_SWEEP_EVERY" envDefault:"1m"`
}

func (c *CacheOptions) Validate() error {
	if c.Storage != "memory" && c.Storage != "redis" {
		return fmt.Errorf("cache Storage must be 'memory' or 'redis', got '%s'", c.Storage)
	}
	if c.Storage == "redis" && c.RedisURL == "" {
		return fmt.Errorf("cache RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type FetchOptions struct {
	Workers         int           `env:"FETCH_WORKERS" envDefault:"2"`
	SubFetchTimeout time.Duration `env:"FETCH_SUBFETCH_TIMEOUT" envDefault:"45s"`
	PageSize        int           `env:"FETCH_PAGE_SIZE" envDefault:"500"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	ERP        ERPOptions
	Cache      CacheOptions
	Fetch      FetchOptions
	Prometheus PrometheusOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/engine.log"`

	// Pools groups employees into teams by tag for team-level aggregation.
	// Comma-separated list of tag names; each tag becomes a pool.
	Pools string `env:"TEAM_POOLS" envDefault:"KSA,UAE,Nightshift"`

	// WorkWeek is the default working weekday set applied when an
	// employee's calendar cannot be resolved. Comma-separated weekday names.
	WorkWeek string `env:"WORK_WEEK" envDefault:"Sunday,Monday,Tuesday,Wednesday,Thursday"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

// PoolNames returns the configured team pool tags, trimmed, in order.
func (c *Configuration) PoolNames() []string {
	parts := strings.Split(c.Pools, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// WorkWeekdays parses the configured default work week. Unknown weekday
// names are skipped.
func (c *Configuration) WorkWeekdays() map[time.Weekday]bool {
	byName := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	out := make(map[time.Weekday]bool)
	for _, p := range strings.Split(c.WorkWeek, ",") {
		if wd, ok := byName[strings.ToLower(strings.TrimSpace(p))]; ok {
			out[wd] = true
		}
	}
	return out
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache configuration error: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validate() error {
	if c.ERP.ConnectAttempts < 1 {
		return fmt.Errorf("ERP_CONNECT_ATTEMPTS must be at least 1, got %d", c.ERP.ConnectAttempts)
	}
	if c.ERP.CallAttempts < 1 {
		return fmt.Errorf("ERP_CALL_ATTEMPTS must be at least 1, got %d", c.ERP.CallAttempts)
	}
	if c.ERP.FailureThreshold < 1 {
		return fmt.Errorf("ERP_FAILURE_THRESHOLD must be at least 1, got %d", c.ERP.FailureThreshold)
	}
	if c.Fetch.Workers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1, got %d", c.Fetch.Workers)
	}
	if c.Fetch.PageSize < 1 {
		return fmt.Errorf("FETCH_PAGE_SIZE must be at least 1, got %d", c.Fetch.PageSize)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
