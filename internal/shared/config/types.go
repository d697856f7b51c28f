package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AdminServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

func (s *AdminServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	// parseTime in UTC; all envelope and rate windows are stored UTC.
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Sep2Config carries the IEEE 2030.5 deployment identity: the forwarded
// certificate header name, the href prefix mounted in front of every
// resource URI, and the IANA private enterprise number baked into MRIDs.
type Sep2Config struct {
	CertPEMHeader   string `mapstructure:"cert_pem_header"`
	HrefPrefix      string `mapstructure:"href_prefix"`
	IanaPEN         uint32 `mapstructure:"iana_pen"`
	DefaultTimezone string `mapstructure:"default_timezone"`
}

// NotifierConfig tunes the notification delivery worker.
type NotifierConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	AttemptTimeout int `mapstructure:"attempt_timeout_seconds"`
	MaxAttempts    int `mapstructure:"max_attempts"`
}
