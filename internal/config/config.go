package config

import (
	"github.com/spf13/viper"
)

// Config holds decoder service configuration.
type Config struct {
	BundlePaths  []string     `mapstructure:"bundle_paths"`
	EngineBundle string       `mapstructure:"engine_bundle"`
	LogLevel     string       `mapstructure:"log_level"`
	Wasm         WasmConfig   `mapstructure:"wasm"`
	Worker       WorkerConfig `mapstructure:"worker"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Enable debug logging.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent engine instances.
	MaxInstances int `mapstructure:"max_instances"`
}

// WorkerConfig holds decode worker configuration.
type WorkerConfig struct {
	// Pending request queue depth.
	QueueSize int `mapstructure:"queue_size"`
}

// Load reads configuration with defaults, optionally merged with a file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("bundle_paths", []string{"./bundles"})
	v.SetDefault("engine_bundle", "draco")
	v.SetDefault("log_level", "info")

	// Wasm defaults
	v.SetDefault("wasm.memory_pages", 1024) // 64MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")
	v.SetDefault("wasm.max_instances", 16)

	// Worker defaults
	v.SetDefault("worker.queue_size", 32)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
