package config

import (
	"bytes"

	"github.com/spf13/viper"
)

type Options struct {
	EnableHealth     bool `mapstructure:"enable_health"`
	EnableStats      bool `mapstructure:"enable_stats"`
	EnablePrometheus bool `mapstructure:"enable_prometheus"`
}

type Config struct {
	Debug          bool
	Port           int
	DBPath         string `mapstructure:"db_path"`
	DBChunkSize    int    `mapstructure:"db_chunk_size"`
	SessionDBPath  string `mapstructure:"session_db_path"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`

	AllowedHeaders []string `mapstructure:"allowed_headers"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	Options *Options
}

func DefaultConfig() *Config {
	return &Config{
		Port:           DefaultPort,
		DBPath:         DefaultDBPath,
		DBChunkSize:    DefaultChunkSize,
		SessionDBPath:  DefaultSessionDBPath,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Options: &Options{
			EnableHealth: true,
			EnableStats:  true,
		},
	}
}

func load(content string, isPath bool) (*Config, error) {
	config := &Config{}

	defaultConfig := DefaultConfig()

	viper.SetDefault("options", defaultConfig.Options)
	viper.SetDefault("port", defaultConfig.Port)
	viper.SetDefault("db_path", defaultConfig.DBPath)
	viper.SetDefault("db_chunk_size", defaultConfig.DBChunkSize)
	viper.SetDefault("session_db_path", defaultConfig.SessionDBPath)
	viper.SetDefault("max_upload_bytes", defaultConfig.MaxUploadBytes)
	viper.SetEnvPrefix("vidvault")

	var err error

	if isPath {
		viper.SetConfigFile(content)
		err = viper.ReadInConfig()
		if err != nil {
			return nil, err
		}
	} else {
		viper.SetConfigType("json")
		err = viper.ReadConfig(bytes.NewBuffer([]byte(content)))
		if err != nil {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func Load(path string) (*Config, error) {
	return load(path, true)
}
