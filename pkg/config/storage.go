package config

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot storage backends.
const (
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"
)

type StorageConfig struct {
	Backend string        `koanf:"backend"`
	Dir     string        `koanf:"dir"`
	Redis   RedisConfig   `koanf:"redis"`
	Timeout time.Duration `koanf:"timeout"`
}

type RedisConfig struct {
	Addr      string `koanf:"addr"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"keyprefix"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	b.WriteString(fmt.Sprintf("  redis.addr: %s\n", c.Redis.Addr))
	b.WriteString(fmt.Sprintf("  redis.db: %d\n", c.Redis.DB))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendFile:
		if c.Dir == "" {
			return fmt.Errorf("storage backend is 'file' but dir is not configured")
		}
	case StorageBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("storage backend is 'redis' but redis addr is not configured")
		}
		if c.Timeout <= 0 {
			return fmt.Errorf("redis connect timeout is not configured")
		}
	case StorageBackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
	return nil
}
