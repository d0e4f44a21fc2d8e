package config

import (
	"fmt"
	"strings"
	"time"
)

// Storage backends for the cart slot store.
const (
	StorageBackendMemory = "memory"
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
)

// StorageConfig selects and configures the cart persistence backend.
type StorageConfig struct {
	Backend string `koanf:"backend"`
	File    struct {
		Path string `koanf:"path"`
	} `koanf:"file"`
	Redis struct {
		Addr    string        `koanf:"addr"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"redis"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	b.WriteString(fmt.Sprintf("  file.path: %s\n", c.File.Path))
	b.WriteString(fmt.Sprintf("  redis.addr: %s\n", c.Redis.Addr))
	b.WriteString(fmt.Sprintf("  redis.timeout: %s\n", c.Redis.Timeout))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendMemory:
		return nil
	case StorageBackendFile:
		if c.File.Path == "" {
			return fmt.Errorf("storage file path is not configured")
		}
		return nil
	case StorageBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is not configured")
		}
		if c.Redis.Timeout <= 0 {
			return fmt.Errorf("redis connect timeout is not configured")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
}
