package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/api"
	api_i "github.com/beka-birhanu/vinom-labyrinth/api/i"
	"github.com/beka-birhanu/vinom-labyrinth/api/mazeapi"
	"github.com/beka-birhanu/vinom-labyrinth/config"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/lock"
	logger "github.com/beka-birhanu/vinom-labyrinth/infrastruture/log"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/tracestore"
	"github.com/beka-birhanu/vinom-labyrinth/player"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ownerLockExpiry bounds how long a crashed driver keeps the playback cursor.
const ownerLockExpiry = 8 * time.Second

// Global variables for dependencies
var (
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	traceStore     i.TraceStore
	ownerLock      i.OwnerLock
	presets        player.Presets
	mazeSession    *service.MazeSession
	mazeController api_i.Controller
	router         *api.Router
	appLogger      i.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

// initStore picks the trace store and the owner lock for the configured backend.
// Traces kept in Redis are shared between processes, so the lock is shared too.
func initStore(ctx context.Context) {
	switch config.Envs.StoreBackend {
	case config.StoreRedis:
		initRedis(ctx)
		traceStore = tracestore.NewRedisStore(redisClient, "labyrinth", config.Envs.TraceTTLSeconds)
		ownerLock = lock.NewRedisLock(redisClient, "labyrinth:player", ownerLockExpiry)
	case config.StoreMongo:
		initMongo(ctx)
		traceStore = tracestore.NewMongoStore(mongoClient, config.Envs.DBName, "traces")
		ownerLock = lock.NewLocalLock()
	default:
		traceStore = tracestore.NewMemoryStore()
		ownerLock = lock.NewLocalLock()
	}
	appLogger.Info(fmt.Sprintf("Trace store initialized (%s)", config.Envs.StoreBackend))
}

func initPresets() {
	var err error
	presets, err = player.NewPresets(config.Envs.SpeedPresets...)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating speed presets: %v", err))
		os.Exit(1)
	}
}

func initMazeSession() {
	var err error
	mazeSession, err = service.NewMazeSession(service.MazeSessionConfig{
		Store:        traceStore,
		Presets:      presets,
		SpeedIndex:   config.Envs.SpeedIndex,
		MinDimension: config.Envs.MazeMinDim,
		MaxDimension: config.Envs.MazeMaxDim,
		Logger:       newLogger("MAZE", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating maze session: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Maze session initialized")
}

func initMazeController() {
	var err error
	mazeController, err = mazeapi.NewMazeController(mazeapi.Config{
		Session:      mazeSession,
		OwnerLock:    ownerLock,
		TickInterval: time.Duration(config.Envs.TickMillis) * time.Millisecond,
		DefaultWidth: config.Envs.MazeWidth,
		Logger:       newLogger("PLAYER", config.ColorMagenta),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating maze controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Maze controller initialized")
}

func initRouter() {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:        fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:     "/api",
		Controllers: []api_i.Controller{mazeController},
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	appLogger = newLogger("APP", config.ColorGreen)

	initStore(ctx)
	defer func() {
		if mongoClient != nil {
			_ = mongoClient.Disconnect(context.Background())
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	initPresets()
	initMazeSession()
	initMazeController()
	initRouter()

	if err := router.Run(); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		os.Exit(1)
	}
}
