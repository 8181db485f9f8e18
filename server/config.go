package server

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 服务进程配置，来自 config.yaml 与 PACARENA_* 环境变量
type Config struct {
	Addr               string `mapstructure:"addr"`
	StaticDir          string `mapstructure:"staticDir"`
	LogFile            string `mapstructure:"logFile"`
	LogLevel           string `mapstructure:"logLevel"`
	PowerUpIntervalSec int    `mapstructure:"powerUpIntervalSec"`
	ShutdownGraceSec   int    `mapstructure:"shutdownGraceSec"`
}

// LoadConfig 读取配置；path 为空时在工作目录找 config.yaml，找不到用默认值
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("staticDir", "web")
	v.SetDefault("logFile", "app.log")
	v.SetDefault("logLevel", "info")
	v.SetDefault("powerUpIntervalSec", 30)
	v.SetDefault("shutdownGraceSec", 10)

	v.SetEnvPrefix("PACARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
