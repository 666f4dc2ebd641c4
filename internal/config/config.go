package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	StoreBackend      string
	StoreLocalPath    string
	UnsplashAccessKey string
	UnsplashAPIURL    string
	DescribeBackend   string
	ClaudeAPIKey      string
	ClaudeModel       string
	OllamaHost        string
	OllamaModel       string
	LogLevel          string
	LogFile           string
}

// Load reads configuration from the environment. Variables from the dotenv
// file named by ENV_FILE (default ".env") are loaded first; a missing file is
// not an error and real environment variables always win.
func Load() *Config {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "/data/pingallery.db"),
		StoreBackend:      getEnv("STORE_BACKEND", "sqlite"),
		StoreLocalPath:    getEnv("STORE_LOCAL_PATH", "/data/blobs"),
		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
		UnsplashAPIURL:    getEnv("UNSPLASH_API_URL", "https://api.unsplash.com"),
		DescribeBackend:   getEnv("DESCRIBE_BACKEND", ""),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.2"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
