package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"officehub/internal/config"
	"officehub/internal/database"
	httpapi "officehub/internal/http"
	"officehub/internal/logger"
	"officehub/internal/mqtt"
	"officehub/internal/repository"
	"officehub/internal/service"
	"officehub/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "officehub")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	// Repositories: Postgres when available, seeded memory fallback otherwise.
	// 订单始终在内存里（演示流程，不落库）。
	var (
		db            *sql.DB
		presenceRepo  repository.PresenceRepository
		employeesRepo repository.EmployeesRepository
		officesRepo   repository.OfficesRepository
		stockRepo     repository.StockRepository
		visitorsRepo  repository.VisitorsRepository
		tempRepo      repository.TemperatureRepository
		coffeeRepo    repository.CoffeeRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for officehub")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		presenceRepo = repository.NewPostgresPresenceRepo(db)
		employeesRepo = repository.NewPostgresEmployeesRepo(db)
		officesRepo = repository.NewPostgresOfficesRepo(db)
		stockRepo = repository.NewPostgresStockRepo(db)
		visitorsRepo = repository.NewPostgresVisitorsRepo(db)
		tempRepo = repository.NewPostgresTemperatureRepo(db)
		coffeeRepo = repository.NewPostgresCoffeeRepo(db)
	} else {
		// DB 未就绪：内存 repo + 演示库存，仪表盘页面开箱即用
		memStock := repository.NewMemoryStockRepo()
		memStock.SeedDemoItems()
		presenceRepo = repository.NewMemoryPresenceRepo()
		employeesRepo = repository.NewMemoryEmployeesRepo()
		officesRepo = repository.NewMemoryOfficesRepo()
		stockRepo = memStock
		visitorsRepo = repository.NewMemoryVisitorsRepo()
		tempRepo = repository.NewMemoryTemperatureRepo()
		coffeeRepo = repository.NewMemoryCoffeeRepo()
	}
	ordersRepo := repository.NewMemoryOrdersRepo()

	presenceSvc := service.NewPresenceService(presenceRepo, employeesRepo, visitorsRepo, log)
	stockSvc := service.NewStockService(stockRepo, log)
	orderSvc := service.NewOrderService(ordersRepo, stockSvc, log)
	climateSvc := service.NewClimateService(tempRepo, kv, cfg.Weather, log)
	visitorSvc := service.NewVisitorService(visitorsRepo, log)
	assistantSvc := service.NewAssistantService(stockSvc, climateSvc, presenceSvc, coffeeRepo, cfg.Assistant, log)

	router := httpapi.NewRouter(log)
	router.RegisterPresenceRoutes(httpapi.NewPresenceHandler(presenceSvc, log))
	router.RegisterStockRoutes(httpapi.NewStockHandler(stockSvc, log))
	router.RegisterOrderRoutes(httpapi.NewOrdersHandler(orderSvc, log))
	router.RegisterSafetyRoutes(httpapi.NewVisitorsHandler(visitorSvc, presenceSvc, log))
	router.RegisterClimateRoutes(httpapi.NewClimateHandler(climateSvc, log), httpapi.NewCoffeeHandler(coffeeRepo, log))
	router.RegisterAssistantRoutes(httpapi.NewAssistantHandler(assistantSvc, log))
	router.RegisterDirectoryRoutes(httpapi.NewDirectoryHandler(employeesRepo, officesRepo, log))
	router.RegisterStubRoutes(httpapi.NewStubHandler())
	router.RegisterDashboardRoutes(httpapi.NewDashboardHandler(presenceSvc, stockSvc, climateSvc, log))

	// 可选：温度传感器 MQTT 接入
	var broker *mqtt.TemperatureBroker
	if cfg.MQTT.Enabled {
		broker = mqtt.NewTemperatureBroker(cfg.MQTT, climateSvc, log)
		if err := broker.Start(); err != nil {
			log.Warn("MQTT enabled but broker start failed, sensor ingest disabled", zap.Error(err))
			broker = nil
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if broker != nil {
		broker.Stop()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
