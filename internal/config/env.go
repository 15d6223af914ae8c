package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file-based settings. AWS credentials
// and region are left to the SDK's own chain.
const (
	EnvVideoBucket    = "REELGEN_VIDEO_BUCKET"
	EnvVideoKey       = "REELGEN_VIDEO_KEY"
	EnvAudioPath      = "REELGEN_AUDIO_PATH"
	EnvStorageBackend = "REELGEN_STORAGE_BACKEND"
)

// LoadEnv reads a dotenv file into the process environment. A missing file
// is not an error; existing variables are never overwritten.
func LoadEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnv copies recognised environment overrides onto the config.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvVideoBucket)); v != "" {
		c.Output.Bucket = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVideoKey)); v != "" {
		c.Output.Key = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAudioPath)); v != "" {
		c.Audio.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
}
