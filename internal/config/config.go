package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                      string `mapstructure:"PORT"`
	DatabasePath              string `mapstructure:"DATABASE_PATH"`
	JWTSecret                 string `mapstructure:"JWT_SECRET"`
	PluginsDir                string `mapstructure:"PLUGINS_DIR"`
	DiscordBotToken           string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordIncidentsChannelID string `mapstructure:"DISCORD_INCIDENTS_CHANNEL_ID"`
	LogLevel                  string `mapstructure:"LOG_LEVEL"`
	EnableCORS                bool   `mapstructure:"ENABLE_CORS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "themepark.db")
	viper.SetDefault("PLUGINS_DIR", "plugins")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.BindEnv("PORT")
	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("PLUGINS_DIR")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_INCIDENTS_CHANNEL_ID")
	viper.BindEnv("LOG_LEVEL")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
