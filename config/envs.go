package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP          string // Host IP for the server
	RESTPort        int    // Port for the REST API
	GinMode         string // Mode for the Gin framework (e.g., release, debug, test)
	StoreBackend    string // Where generated traces are kept: memory, redis or mongo
	RedisAddr       string // Address of the Redis server
	RedisPassword   string // Password for the Redis server
	RedisDB         int    // Redis logical database
	TraceTTLSeconds int    // Lifetime of a stored trace, 0 keeps it forever
	DBHost          string // Hostname or IP address for the database
	DBPort          int    // Port number for the database
	DBUser          string // Username for the database
	DBPassword      string // Password for the database
	DBName          string // Name of the database
	MazeWidth       int    // Width used when a request omits it
	MazeMinDim      int    // Smallest width/height accepted from the controls
	MazeMaxDim      int    // Largest width/height accepted from the controls
	SpeedPresets    []int  // Steps-per-second options, strictly increasing
	SpeedIndex      int    // Preset selected for a new player
	TickMillis      int    // Period of the playback driver
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	cfg := Config{
		HostIP:          getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:        getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:         getEnvWithDefault("GIN_MODE", "release"),
		StoreBackend:    getEnvWithDefault("STORE_BACKEND", StoreMemory),
		RedisAddr:       getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsIntWithDefault("REDIS_DB", 0),
		TraceTTLSeconds: getEnvAsIntWithDefault("TRACE_TTL_SECONDS", 3600),
		DBHost:          getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:          getEnvAsIntWithDefault("DB_PORT", 27017),
		DBUser:          getEnvWithDefault("DB_USER", ""),
		DBPassword:      getEnvWithDefault("DB_PASS", ""),
		DBName:          getEnvWithDefault("DB_NAME", "labyrinth"),
		MazeWidth:       getEnvAsIntWithDefault("MAZE_DEFAULT_WIDTH", 10),
		MazeMinDim:      getEnvAsIntWithDefault("MAZE_MIN_DIMENSION", 5),
		MazeMaxDim:      getEnvAsIntWithDefault("MAZE_MAX_DIMENSION", 500),
		SpeedIndex:      getEnvAsIntWithDefault("PLAYER_DEFAULT_SPEED_INDEX", 2),
		TickMillis:      getEnvAsIntWithDefault("PLAYER_TICK_MS", 8),
	}

	presets, err := ParseIntList(getEnvWithDefault("PLAYER_SPEED_PRESETS", "1,2,5,10,20,50,100,200,500,1000,2000,5000,10000,20000"))
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable PLAYER_SPEED_PRESETS: %v", err)
	}
	cfg.SpeedPresets = presets

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[APP] [FATAL] Invalid configuration: %v", err)
	}
	return cfg
}

// Validate checks the values that cannot be checked one variable at a time.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.MazeMinDim < 1 || c.MazeMaxDim < c.MazeMinDim {
		return fmt.Errorf("maze dimension range [%d, %d] is empty", c.MazeMinDim, c.MazeMaxDim)
	}
	if c.SpeedIndex < 0 || c.SpeedIndex >= len(c.SpeedPresets) {
		return fmt.Errorf("speed index %d outside %d presets", c.SpeedIndex, len(c.SpeedPresets))
	}
	if c.TickMillis <= 0 {
		return fmt.Errorf("tick period must be positive, got %dms", c.TickMillis)
	}
	return nil
}

// ParseIntList parses a comma separated list of integers.
func ParseIntList(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", field)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

// getEnvAsIntWithDefault retrieves the value of an environment variable as an integer, logs a fatal error if it cannot be parsed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
