package config

import (
	"encoding/json"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Geocoder GeocoderConfig `json:"geocoder"`
	Shipping ShippingConfig `json:"shipping"`
	Sync     SyncConfig     `json:"sync"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type GeocoderConfig struct {
	BaseURL       string `json:"base_url"`
	PostalBaseURL string `json:"postal_base_url"`
	TimeoutMS     int    `json:"timeout_ms"`
}

// ShippingConfig carries the debounce windows for the two resolution
// modes; per-store pricing settings live in the record store.
type ShippingConfig struct {
	DistanceDebounceMS int `json:"distance_debounce_ms"`
	TableDebounceMS    int `json:"table_debounce_ms"`
}

type SyncConfig struct {
	DebounceMS int `json:"debounce_ms"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Geocoder.TimeoutMS == 0 {
		c.Geocoder.TimeoutMS = 8000
	}
	if c.Shipping.DistanceDebounceMS == 0 {
		c.Shipping.DistanceDebounceMS = 1500
	}
	if c.Shipping.TableDebounceMS == 0 {
		c.Shipping.TableDebounceMS = 300
	}
	if c.Sync.DebounceMS == 0 {
		c.Sync.DebounceMS = 1000
	}
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
