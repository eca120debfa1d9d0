// Package config builds the process configuration from the environment. The
// result is an explicit object passed to the components that need it; no
// business logic reads environment variables directly.
package config

import (
	"log"
	"os"
	"strings"
)

// Config is the runtime's process-wide configuration.
type Config struct {
	// SupabaseURL is the backend project root, e.g. "https://xyz.supabase.co".
	SupabaseURL string
	// SupabaseAnonKey is the anonymous API credential.
	SupabaseAnonKey string
	// ListenAddr is the local HTTP API address for the SPA shell.
	ListenAddr string
	// AllowedOrigins are the SPA origins permitted by CORS.
	AllowedOrigins []string
	// PrefsPath is where the durable key/value preferences live.
	PrefsPath string
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		SupabaseURL:     getEnvRequired("SUPABASE_URL"),
		SupabaseAnonKey: getEnvRequired("SUPABASE_ANON_KEY"),
		ListenAddr:      getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		PrefsPath:       getEnv("PREFS_PATH", "./var/festguide-prefs.json"),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:5173")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvRequired returns environment variable value or exits if not set
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("Required environment variable %s is not set", key)
	return "" // This line will never execute due to the log.Fatalf above
}
