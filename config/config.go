package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	BackendScan  = "scan"
	BackendIndex = "index"

	defaultPort                    = "8080"
	defaultCollectionTimeout       = 5 * time.Second
	defaultMaxResultsPerCollection = 1000
)

type Config struct {
	config *viper.Viper
}

// Load reads config/config.<env>.yaml from the project root, if present, and lets
// environment variables override it. An empty env falls back to $ENV, then "local".
func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch backend := c.GetSearchBackend(); backend {
	case BackendScan, BackendIndex:
		return nil
	default:
		return fmt.Errorf("unsupported search backend %q, expected %q or %q", backend, BackendScan, BackendIndex)
	}
}

// getString prefers the environment variable envKey over the yaml key.
func (c *Config) getString(envKey string, yamlKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(yamlKey)
	}

	return value
}

func (c *Config) GetPort() string {
	port := c.getString("PORT", "server.port")
	if len(port) == 0 {
		port = defaultPort
	}

	return port
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level")
}

func (c *Config) GetStoragePath() string {
	return c.getString("STORAGE_PATH", "database.storage_path")
}

// GetDocDBPath is the bbolt file holding documents and import statuses.
func (c *Config) GetDocDBPath() string {
	return c.getString("DOCDB_PATH", "database.docdb_path")
}

// GetIndexPath is the bleve index directory. Empty means an in-memory index.
func (c *Config) GetIndexPath() string {
	return c.getString("INDEX_PATH", "database.index_path")
}

func (c *Config) GetSearchBackend() string {
	backend := c.getString("SEARCH_BACKEND", "search.backend")
	if len(backend) == 0 {
		backend = BackendScan
	}

	return backend
}

func (c *Config) GetCollectionTimeout() time.Duration {
	timeout := c.config.GetDuration("COLLECTION_TIMEOUT")
	if timeout <= 0 {
		timeout = c.config.GetDuration("search.collection_timeout")
	}
	if timeout <= 0 {
		timeout = defaultCollectionTimeout
	}

	return timeout
}

func (c *Config) GetMaxResultsPerCollection() int {
	maxResults := c.config.GetInt("MAX_RESULTS_PER_COLLECTION")
	if maxResults <= 0 {
		maxResults = c.config.GetInt("search.max_results_per_collection")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResultsPerCollection
	}

	return maxResults
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
