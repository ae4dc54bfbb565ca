package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is loaded from the environment, with a .env file honored when
// present.
type Config struct {
	MongoUsername string `env:"MONGO_USERNAME,required"`
	MongoPassword string `env:"MONGO_PASSWORD,required"`
	MongoCluster  string `env:"MONGO_CLUSTER,required"`
	MongoAppName  string `env:"MONGO_APP_NAME,required"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"pmes"`

	JWTSecret string `env:"JWT_SECRET,required"`

	Port      string `env:"PORT" envDefault:"8081"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

func Load() (*Config, error) {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MongoURI builds the Atlas connection string.
func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		c.MongoUsername, c.MongoPassword, c.MongoCluster, c.MongoAppName)
}
