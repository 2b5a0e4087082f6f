package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config holds everything the service reads from its environment.
type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL"     required:"true"`
	AppPort        string `envconfig:"APP_PORT"         default:"8080"`
	LogLevel       string `envconfig:"LOG_LEVEL"        default:"info"`
	StorageDir     string `envconfig:"STORAGE_DIR"      default:"storage/app"`
	StorageBaseURL string `envconfig:"STORAGE_BASE_URL" default:"/storage"`
	TokenSecret    string `envconfig:"TOKEN_SECRET"     required:"true"`
	TokenTTLHours  int    `envconfig:"TOKEN_TTL_HOURS"  default:"24"`
}

// Load reads an optional .env file and then processes the environment.
func Load(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("could not load .env file: %v", err)
		}
	} else {
		logger.Info("loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
