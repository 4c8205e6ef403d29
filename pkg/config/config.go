// Package config описывает конфигурацию gridbench и загружает её через koanf.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Config объединяет все секции конфигурации.
type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Search    SearchConfig    `koanf:"search"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Report    ReportConfig    `koanf:"report"`
}

// AppConfig идентифицирует экземпляр сервиса.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // попадает в метки метрик и ресурс трейсов
}

// HTTPConfig описывает JSON API (serve).
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	Swagger         bool          `koanf:"swagger"` // /swagger/ с OpenAPI документом
	CORS            CORSConfig    `koanf:"cors"`
}

// CORSConfig управляет middleware.CORS.
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig передаётся в logger.FromConfig.
type LogConfig struct {
	Level      string `koanf:"level"`     // debug, info, warn, error
	Format     string `koanf:"format"`    // json, text
	Output     string `koanf:"output"`    // stdout, stderr, file
	FilePath   string `koanf:"file_path"` // для output=file
	MaxSize    int    `koanf:"max_size"`  // lumberjack, MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig описывает /metrics. Если порт совпадает с http.port,
// метрики отдаются тем же сервером.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig включает экспорт спанов поиска по OTLP/gRPC.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// SearchConfig задаёт лимиты узлов и состав эксперимента.
type SearchConfig struct {
	MaxNodesAStar int           `koanf:"max_nodes_astar"` // лимит узлов A*
	MaxNodesBeam  int           `koanf:"max_nodes_beam"`  // лимит узлов beam search
	MaxNodesLimit int           `koanf:"max_nodes_limit"` // верхняя граница лимита из API
	BeamWidths    []int         `koanf:"beam_widths"`     // ширины по умолчанию
	Workers       int           `koanf:"workers"`         // параллельные поиски
	ScenarioFile  string        `koanf:"scenario_file"`   // YAML со сценариями, пусто = встроенные
	Timeout       time.Duration `koanf:"timeout"`         // ожидание слота в пуле
}

// DatabaseConfig выбирает хранилище истории запусков.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres, sqlite, memory
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN строит строку подключения для выбранного драйвера.
// Для memory возвращает пустую строку.
func (d DatabaseConfig) DSN() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
		)
	case "sqlite":
		return d.Database
	default:
		return ""
	}
}

// CacheConfig включает кэш результатов поиска.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает host:port сервера Redis.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig ограничивает частоту запросов к API.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"`
	Backend         string        `koanf:"backend"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// ReportConfig определяет, куда и в каких форматах пишутся отчёты run.
type ReportConfig struct {
	OutputDir string   `koanf:"output_dir"` // каталог для файлов отчётов
	Formats   []string `koanf:"formats"`    // csv, text, json, excel, pdf
	BaseName  string   `koanf:"base_name"`  // имя файлов без расширения
	Title     string   `koanf:"title"`
	Console   bool     `koanf:"console"` // дублировать текстовый лог в stdout

	PDF PDFConfig `koanf:"pdf"`
}

// PDFConfig задаёт поля страницы PDF отчёта (мм).
type PDFConfig struct {
	MarginTop         float64 `koanf:"margin_top"`
	MarginLeft        float64 `koanf:"margin_left"`
	MarginRight       float64 `koanf:"margin_right"`
	EnablePageNumbers bool    `koanf:"enable_page_numbers"`
}

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	dbDrivers     = []string{"", "memory", "postgres", "postgresql", "sqlite"}
	cacheDrivers  = []string{"", "memory", "redis"}
	limitBackends = []string{"", "memory", "redis"}
	reportFormats = []string{"csv", "text", "json", "excel", "pdf"}
)

// Validate проверяет конфигурацию и возвращает все найденные проблемы разом.
// Пустой log.level заменяется на info.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.App.Name == "" {
		fail("app.name is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		fail("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		fail("log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}

	if c.Search.MaxNodesAStar <= 0 {
		fail("search.max_nodes_astar must be positive, got %d", c.Search.MaxNodesAStar)
	}
	if c.Search.MaxNodesBeam <= 0 {
		fail("search.max_nodes_beam must be positive, got %d", c.Search.MaxNodesBeam)
	}
	if c.Search.MaxNodesLimit < 0 {
		fail("search.max_nodes_limit must not be negative, got %d", c.Search.MaxNodesLimit)
	}
	if c.Search.Workers < 0 {
		fail("search.workers must not be negative, got %d", c.Search.Workers)
	}
	for _, w := range c.Search.BeamWidths {
		if w < 0 {
			fail("search.beam_widths must be non-negative, got %d", w)
		}
	}

	if !slices.Contains(dbDrivers, strings.ToLower(c.Database.Driver)) {
		fail("database.driver must be one of memory, postgres, sqlite, got %q", c.Database.Driver)
	}
	if c.Cache.Enabled && !slices.Contains(cacheDrivers, strings.ToLower(c.Cache.Driver)) {
		fail("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}
	if c.RateLimit.Enabled && !slices.Contains(limitBackends, strings.ToLower(c.RateLimit.Backend)) {
		fail("rate_limit.backend must be memory or redis, got %q", c.RateLimit.Backend)
	}

	for _, f := range c.Report.Formats {
		if !slices.Contains(reportFormats, strings.ToLower(f)) {
			fail("report.formats contains unknown format %q", f)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
