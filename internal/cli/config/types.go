// Package config provides configuration management for the storescope CLI.
package config

// ServerConfig holds configuration for the inspection server.
type ServerConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	DataDir      string        `koanf:"data_dir"`
	PrefsDir     string        `koanf:"prefs_dir"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Server       *ServerConfig `koanf:"server"`
}

// Default configuration values.
const (
	DefaultDataDir  = "data"
	DefaultPrefsDir = "prefs"
	DefaultOutput   = "table"
	DefaultPort     = 8790
)

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:  DefaultPort,
		Watch: true,
	}
}

// GetServerConfig returns the server config with defaults applied for any
// unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return DefaultServerConfig()
	}
	srv := c.Server
	if srv.Port == 0 {
		srv.Port = DefaultPort
	}
	return srv
}
