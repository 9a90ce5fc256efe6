package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de almacenamiento soportados.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config configuración completa del servicio.
type Config struct {
	App     AppConfig
	DB      DBConfig
	HTTP    HTTPConfig
	Ledger  LedgerConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Reports ReportConfig
}

// AppConfig entorno, nombre, nivel de log y driver de almacenamiento.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Storage  string // postgres | memory
}

// DBConfig conexión a PostgreSQL. DatabaseURL, si está, reemplaza a los campos sueltos.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
}

// DSN arma el connection string a partir de los campos sueltos (usuario y clave escapados).
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig servidor HTTP.
type HTTPConfig struct {
	Host     string
	Port     int
	DocsPath string // documento OpenAPI servido por Swagger UI (si existe)
}

// Addr host:port de escucha.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerConfig parámetros del libro de movimientos.
type LedgerConfig struct {
	Actor         string
	SKUPrefix     string
	Units         []string // vacío = vocabulario por defecto
	Locations     []string
	FreeFormUnits bool
	LockKey       int64 // clave de pg_advisory_xact_lock (un escritor lógico por ledger)
}

// RedisConfig caché de estadísticas. Addr vacío = caché desactivada.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled indica si hay Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// KafkaConfig publicación de movimientos. Sin brokers = desactivada.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled indica si hay brokers configurados.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// ReportConfig reporte programado y exportaciones.
type ReportConfig struct {
	Cron       string // vacío = sin reporte programado
	Dir        string // vacío = solo log
	CSVCharset string // utf-8 | windows-1252
}

// defaults valores usados cuando ni el entorno ni los archivos definen la clave.
var defaults = map[string]any{
	"APP_ENV":                 "development",
	"APP_NAME":                "mi-app-inventario",
	"LOG_LEVEL":               "info",
	"STORAGE_DRIVER":          StoragePostgres,
	"DB_HOST":                 "localhost",
	"DB_PORT":                 5432,
	"DB_USER":                 "postgres",
	"DB_NAME":                 "inventario",
	"DB_SSLMODE":              "disable",
	"DB_MAX_CONNS":            10,
	"HTTP_HOST":               "0.0.0.0",
	"HTTP_PORT":               8080,
	"HTTP_DOCS_PATH":          "./docs/swagger.json",
	"LEDGER_ACTOR":            "sistema",
	"LEDGER_SKU_PREFIX":       "A",
	"LEDGER_FREE_FORM_UNITS":  false,
	"LEDGER_LOCK_KEY":         4711,
	"REDIS_DB":                0,
	"STATS_CACHE_TTL_SECONDS": 300,
	"KAFKA_TOPIC":             "inventory.movements",
	"EXPORT_CSV_CHARSET":      "utf-8",
}

// envOnly claves sin valor por defecto; se enlazan para que AutomaticEnv las vea también
// en Unmarshal y en IsSet.
var envOnly = []string{
	"DATABASE_URL", "DB_PASSWORD", "LEDGER_UNITS", "LEDGER_LOCATIONS",
	"REDIS_ADDR", "REDIS_PASSWORD", "KAFKA_BROKERS", "REPORT_CRON", "REPORT_DIR",
}

// Load lee .env y config.env (directorio actual o ./config) y luego el entorno, que tiene prioridad.
func Load() (*Config, error) {
	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	for _, k := range envOnly {
		_ = v.BindEnv(k)
	}

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // opcional

	v.SetConfigName("config") // config.env
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Storage:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
		},
		HTTP: HTTPConfig{
			Host:     v.GetString("HTTP_HOST"),
			Port:     v.GetInt("HTTP_PORT"),
			DocsPath: v.GetString("HTTP_DOCS_PATH"),
		},
		Ledger: LedgerConfig{
			Actor:         v.GetString("LEDGER_ACTOR"),
			SKUPrefix:     v.GetString("LEDGER_SKU_PREFIX"),
			Units:         getList(v, "LEDGER_UNITS"),
			Locations:     getList(v, "LEDGER_LOCATIONS"),
			FreeFormUnits: v.GetBool("LEDGER_FREE_FORM_UNITS"),
			LockKey:       v.GetInt64("LEDGER_LOCK_KEY"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      time.Duration(v.GetInt("STATS_CACHE_TTL_SECONDS")) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: getList(v, "KAFKA_BROKERS"),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Reports: ReportConfig{
			Cron:       v.GetString("REPORT_CRON"),
			Dir:        v.GetString("REPORT_DIR"),
			CSVCharset: strings.ToLower(v.GetString("EXPORT_CSV_CHARSET")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.App.Storage != StoragePostgres && c.App.Storage != StorageMemory {
		return fmt.Errorf("STORAGE_DRIVER inválido: %q", c.App.Storage)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT fuera de rango: %d", c.HTTP.Port)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("STATS_CACHE_TTL_SECONDS negativo")
	}
	return nil
}

// getList separa por comas y descarta vacíos.
func getList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range strings.Split(v.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
