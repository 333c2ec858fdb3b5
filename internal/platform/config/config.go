package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the wendao binary. A zero Seed
// rolls a random fate.
type Config struct {
	DBPath           string        `env:"WENDAO_DB_PATH" envDefault:"wendao.db"`
	Slot             string        `env:"WENDAO_SLOT" envDefault:"default"`
	TickInterval     time.Duration `env:"WENDAO_TICK_INTERVAL" envDefault:"50ms"`
	AutosaveInterval time.Duration `env:"WENDAO_AUTOSAVE_INTERVAL" envDefault:"1s"`
	FeedAddr         string        `env:"WENDAO_FEED_ADDR"`
	Seed             uint32        `env:"WENDAO_SEED" envDefault:"0"`
	Cues             bool          `env:"WENDAO_CUES" envDefault:"true"`
}

// Load reads the optional dotenv files, then the environment. Variables
// already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("WENDAO_DB_PATH must not be empty")
	}
	if c.Slot == "" {
		return fmt.Errorf("WENDAO_SLOT must not be empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("WENDAO_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.AutosaveInterval < c.TickInterval {
		return fmt.Errorf("WENDAO_AUTOSAVE_INTERVAL %s is shorter than the tick %s", c.AutosaveInterval, c.TickInterval)
	}
	return nil
}
