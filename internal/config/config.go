// Package config resolves the environment-level settings the CLI needs
// before the pipeline runs: the Shadow data directory and the shared
// state directory (spec.md §6 "Environment"). It follows the teacher's
// requireEnv/getEnvOrDefault convention, generalized into a loadable
// struct instead of ad-hoc main.go locals.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultShadowDataDir    = "/tmp/monerosim/shadow.data"
	defaultMonerosimSharedDir = "/tmp/monerosim/shared"
)

// Config carries the environment-derived paths. The `plan` command reads
// MonerosimSharedDir as its default shared registry directory; per-phase
// log paths are rooted under the plan output directory, not ShadowDataDir.
type Config struct {
	ShadowDataDir      string
	MonerosimSharedDir string
}

// Load reads a .env file if present (silently continuing if it is not,
// mirroring the teacher's "copy .env.example to .env" convention without
// making it mandatory), then resolves ShadowDataDir and
// MonerosimSharedDir with getEnvOrDefault semantics.
func Load(log *logrus.Logger) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env file: %v", err)
	}
	return &Config{
		ShadowDataDir:      getEnvOrDefault("SHADOW_DATA_DIR", defaultShadowDataDir),
		MonerosimSharedDir: getEnvOrDefault("MONEROSIM_SHARED_DIR", defaultMonerosimSharedDir),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
