package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "GRIDBENCH_"
	configEnvVar = "CONFIG_PATH"
)

// errNoConfigFile означает, что ни один из путей поиска не существует.
var errNoConfigFile = errors.New("no config file found")

// Loader собирает Config из трёх слоёв: значения по умолчанию, YAML файл,
// переменные окружения GRIDBENCH_*. Каждый следующий слой перекрывает предыдущий.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
	required    bool // файл задан явно: отсутствие ошибка, CONFIG_PATH не читается
}

// LoaderOption настраивает Loader.
type LoaderOption func(*Loader)

// WithConfigPaths заменяет список путей, в которых ищется YAML файл.
// Без аргументов файл не читается вовсе.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) { l.configPaths = paths }
}

// WithEnvPrefix меняет префикс переменных окружения.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.envPrefix = prefix }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k:           koanf.New("."),
		configPaths: []string{"gridbench.yaml", "config/gridbench.yaml", "/etc/gridbench/gridbench.yaml"},
		envPrefix:   envPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load читает все слои и проверяет результат через Config.Validate.
// Отсутствие файла не ошибка, а битый файл ошибка.
func (l *Loader) Load() (*Config, error) {
	defaults := defaultValues()
	if err := l.k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, err := l.findConfigFile()
	switch {
	case err == nil:
		if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	case l.required:
		return nil, fmt.Errorf("%w: %v", err, l.configPaths)
	}

	if err := l.k.Load(env.ProviderWithValue(l.envPrefix, ".", envTransform(l.envPrefix, defaults)), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// defaultValues задаёт нижний слой конфигурации. Набор ключей здесь также
// служит словарём для переменных окружения, поэтому каждое поле Config
// должно иметь запись, пусть даже пустую.
func defaultValues() map[string]any {
	return map[string]any{
		// App
		"app.name":        "search-svc",
		"app.version":     "1.0.0",
		"app.environment": "development",

		// HTTP
		"http.port":             8080,
		"http.read_timeout":     30 * time.Second,
		"http.write_timeout":    5 * time.Minute,
		"http.shutdown_timeout": 10 * time.Second,
		"http.max_body_bytes":   1 << 20,
		"http.swagger":          true,

		"http.cors.enabled":           true,
		"http.cors.allowed_origins":   []string{"*"},
		"http.cors.allowed_methods":   []string{"GET", "POST", "DELETE", "OPTIONS"},
		"http.cors.allowed_headers":   []string{"Content-Type", "Accept", "Origin", "X-Request-ID"},
		"http.cors.allow_credentials": false,
		"http.cors.max_age":           86400,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file_path":   "",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "gridbench",
		"metrics.subsystem": "search",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "search-svc",
		"tracing.sample_rate":  0.1,

		// Search
		"search.max_nodes_astar": 5_000_000,
		"search.max_nodes_beam":  5_000_000,
		"search.max_nodes_limit": 20_000_000,
		"search.beam_widths":     []int{8, 16},
		"search.workers":         1,
		"search.scenario_file":   "",
		"search.timeout":         10 * time.Minute,

		// Database
		"database.driver":             "memory",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "gridbench",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,

		// Cache
		"cache.enabled":     false,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.password":    "",
		"cache.db":          0,
		"cache.default_ttl": time.Hour,
		"cache.max_entries": 10000,

		// Rate Limit
		"rate_limit.enabled":          true,
		"rate_limit.requests":         60,
		"rate_limit.window":           time.Minute,
		"rate_limit.strategy":         "sliding_window",
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       10,
		"rate_limit.cleanup_interval": 5 * time.Minute,
		"rate_limit.redis_addr":       "",

		// Report
		"report.output_dir": ".",
		"report.formats":    []string{"csv", "text"},
		"report.base_name":  "pathfinding_results",
		"report.title":      "A* vs Beam Search on Implicit Grids",
		"report.console":    true,

		"report.pdf.margin_top":          15.0,
		"report.pdf.margin_left":         15.0,
		"report.pdf.margin_right":        15.0,
		"report.pdf.enable_page_numbers": true,
	}
}

// findConfigFile возвращает первый существующий файл: сначала $CONFIG_PATH,
// затем configPaths по порядку.
func (l *Loader) findConfigFile() (string, error) {
	candidates := l.configPaths
	if p := os.Getenv(configEnvVar); p != "" && !l.required {
		candidates = append([]string{p}, candidates...)
	}

	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err == nil && !info.IsDir() {
			return abs, nil
		}
	}
	return "", errNoConfigFile
}

// envTransform переводит GRIDBENCH_SEARCH_MAX_NODES_BEAM в search.max_nodes_beam.
// Имя сверяется с ключами defaults; для неизвестных имён каждое подчёркивание
// становится точкой. Значения списковых полей разбиваются по запятым.
func envTransform(prefix string, defaults map[string]any) func(string, string) (string, any) {
	known := make(map[string]string, len(defaults))
	for key := range defaults {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(envKey, value string) (string, any) {
		flat := strings.ToLower(strings.TrimPrefix(envKey, prefix))
		key, ok := known[flat]
		if !ok {
			return strings.ReplaceAll(flat, "_", "."), value
		}
		switch defaults[key].(type) {
		case []string, []int:
			return key, splitAndTrim(value)
		}
		return key, value
	}
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Load читает конфигурацию из путей по умолчанию.
func Load() (*Config, error) {
	return NewLoader().Load()
}

// LoadFile читает конфигурацию из указанного файла. В отличие от Load,
// отсутствие файла ошибка, а CONFIG_PATH игнорируется.
func LoadFile(path string) (*Config, error) {
	l := NewLoader(WithConfigPaths(path))
	l.required = true
	return l.Load()
}
