package utils

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadEnv merges a .env file (if present) and the process environment into
// viper so config.LoadConfig can read everything through one accessor.
func LoadEnv(path string) {
	if err := godotenv.Load(path + "/.env"); err != nil {
		logrus.Debugf("no .env file loaded from %s: %v", path, err)
	}

	viper.AutomaticEnv()
}
