package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/yourusername/verify-api/internal/config"
	"github.com/yourusername/verify-api/internal/domain/repository"
	pgRepo "github.com/yourusername/verify-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/verify-api/internal/repository/redis"
	"github.com/yourusername/verify-api/internal/service"
	"github.com/yourusername/verify-api/internal/worker"
	"github.com/yourusername/verify-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	codeRepo := pgRepo.NewVerificationCodeRepo(db)

	// Redis опционален: без него статистика считается напрямую из БД
	var cacheRepo *redisRepo.CacheRepo
	if cfg.Redis.Addr != "" || len(cfg.Redis.Addrs) > 0 {
		redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		cacheRepo, err = redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		log.Println("Successfully connected to Redis")
	}

	// Инициализируем сервисы
	verificationService, err := service.NewVerificationService(userRepo, codeRepo)
	if err != nil {
		log.Printf("Failed to initialize VerificationService: %v", err)
		os.Exit(1)
	}

	// Типизированный nil в интерфейсе не считается nil, поэтому приводим явно
	var cache repository.CacheRepository
	if cacheRepo != nil {
		cache = cacheRepo
	}
	statsService, err := service.NewStatsService(codeRepo, cache, cfg.Worker.StatsCacheTTL)
	if err != nil {
		log.Printf("Failed to initialize StatsService: %v", err)
		os.Exit(1)
	}

	reaper, err := worker.NewReaper(
		verificationService,
		statsService,
		cfg.Worker.CleanupInterval,
		cfg.Worker.StatsInterval,
		uuid.NewString(),
	)
	if err != nil {
		log.Printf("Failed to initialize Reaper: %v", err)
		os.Exit(1)
	}

	// Graceful shutdown по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reaper.Run(ctx)
}
