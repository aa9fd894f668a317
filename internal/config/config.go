// Package config loads dashboard settings from dashboard.cfg.json.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "dashboard.cfg.json"

// RecordNames are the parameter store records the editors persist to.
type RecordNames struct {
	FirstPoly       string `json:"firstPoly" mapstructure:"firstPoly"`
	SecondPoly      string `json:"secondPoly" mapstructure:"secondPoly"`
	FirstCrossline  string `json:"firstCrossline" mapstructure:"firstCrossline"`
	SecondCrossline string `json:"secondCrossline" mapstructure:"secondCrossline"`
}

// StoreConfig locates the device parameter store.
type StoreConfig struct {
	BaseURL  string
	Endpoint string
	Timeout  time.Duration
	Names    RecordNames
}

// EditorConfig holds overlay geometry and dispatch settings.
type EditorConfig struct {
	FrameWidth  int
	FrameHeight int
	RefreshRate int
	FirstLanes  int
	SecondLanes int
}

// ServerConfig holds the dashboard HTTP server settings.
type ServerConfig struct {
	Listen        string
	StatsInterval time.Duration
	PCU           bool
}

// SQLiteConfig holds settings of the in-memory SQLite backend.
type SQLiteConfig struct {
	DumpPath     string
	DumpInterval time.Duration
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
}

// StorageConfig selects the parameter store emulator backend.
type StorageConfig struct {
	Type   string // "memory", "sqlite" or "postgres"
	SQLite SQLiteConfig
	DB     DBConfig
}

// InfluxConfig holds statistics export settings.
type InfluxConfig struct {
	Enabled       bool
	Protocol      string
	Host          string
	Port          string
	Token         string
	Org           string
	Bucket        string
	Retention     time.Duration
	BackupPath    string
	QueueLimit    int
	FlushInterval time.Duration
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	BatchTimeout   time.Duration
	MetricInterval time.Duration
	Endpoint       string
	Insecure       bool
}

// ParamStoreConfig holds the parameter store emulator settings.
type ParamStoreConfig struct {
	Listen   string
	Endpoint string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("store.baseUrl", "http://127.0.0.1")
	viper.SetDefault("store.endpoint", "/local/enixma_analytic/parameters.cgi")
	viper.SetDefault("store.timeout", "30s")
	viper.SetDefault("store.names.firstPoly", "firstPoly")
	viper.SetDefault("store.names.secondPoly", "secondPoly")
	viper.SetDefault("store.names.firstCrossline", "firstCrossline")
	viper.SetDefault("store.names.secondCrossline", "secondCrossline")

	viper.SetDefault("editor.frameWidth", 1024)
	viper.SetDefault("editor.frameHeight", 768)
	viper.SetDefault("editor.refreshRate", 60)
	viper.SetDefault("editor.firstLanes", 1)
	viper.SetDefault("editor.secondLanes", 1)

	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.statsInterval", "1m")
	viper.SetDefault("server.pcu", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.sqlite.dumpPath", "./parameters.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "enixma")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "enixma")
	viper.SetDefault("influx.bucket", "traffic_stats")
	viper.SetDefault("influx.retention", "2160h")
	viper.SetDefault("influx.backupPath", "./influx_backup.lp.gz")
	viper.SetDefault("influx.queueLimit", 1000)
	viper.SetDefault("influx.flushInterval", "10s")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "dashboard")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("paramstore.listen", ":8081")
	viper.SetDefault("paramstore.endpoint", "/local/enixma_analytic/parameters.cgi")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStoreConfig returns the parameter store client settings.
func GetStoreConfig() StoreConfig {
	return StoreConfig{
		BaseURL:  viper.GetString("store.baseUrl"),
		Endpoint: viper.GetString("store.endpoint"),
		Timeout:  viper.GetDuration("store.timeout"),
		Names: RecordNames{
			FirstPoly:       viper.GetString("store.names.firstPoly"),
			SecondPoly:      viper.GetString("store.names.secondPoly"),
			FirstCrossline:  viper.GetString("store.names.firstCrossline"),
			SecondCrossline: viper.GetString("store.names.secondCrossline"),
		},
	}
}

// GetEditorConfig returns the overlay settings.
func GetEditorConfig() EditorConfig {
	return EditorConfig{
		FrameWidth:  viper.GetInt("editor.frameWidth"),
		FrameHeight: viper.GetInt("editor.frameHeight"),
		RefreshRate: viper.GetInt("editor.refreshRate"),
		FirstLanes:  viper.GetInt("editor.firstLanes"),
		SecondLanes: viper.GetInt("editor.secondLanes"),
	}
}

// GetServerConfig returns the dashboard server settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Listen:        viper.GetString("server.listen"),
		StatsInterval: viper.GetDuration("server.statsInterval"),
		PCU:           viper.GetBool("server.pcu"),
	}
}

// GetStorageConfig returns the emulator backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
	}
}

// GetInfluxConfig returns the statistics export settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:       viper.GetBool("influx.enabled"),
		Protocol:      viper.GetString("influx.protocol"),
		Host:          viper.GetString("influx.host"),
		Port:          viper.GetString("influx.port"),
		Token:         viper.GetString("influx.token"),
		Org:           viper.GetString("influx.org"),
		Bucket:        viper.GetString("influx.bucket"),
		Retention:     viper.GetDuration("influx.retention"),
		BackupPath:    viper.GetString("influx.backupPath"),
		QueueLimit:    viper.GetInt("influx.queueLimit"),
		FlushInterval: viper.GetDuration("influx.flushInterval"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}

// GetParamStoreConfig returns the emulator settings.
func GetParamStoreConfig() ParamStoreConfig {
	return ParamStoreConfig{
		Listen:   viper.GetString("paramstore.listen"),
		Endpoint: viper.GetString("paramstore.endpoint"),
	}
}
