package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/flightwatch/price-tracker/internal/config"
	"github.com/flightwatch/price-tracker/internal/db"
	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/ops"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/internal/server"
	"github.com/flightwatch/price-tracker/internal/service"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

func main() {
	// 1. Конфиг из env (+ .env).
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.NewLogger(cfg.LogLevel)
	defer appLog.Sync()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		appLog.Fatal("init db", "error", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		appLog.Fatal("auto migrate", "error", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		appLog.Fatal("sql DB", "error", err)
	}
	defer sqlDB.Close()

	// 4. Метрики на собственном реестре.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, cfg.DB.Name),
	)
	m := metrics.NewMetrics(cfg.MetricsNamespace, registry)

	// 5. Репозитории (реализации на GORM).
	userRepo := repository.NewGormUserRepository(gormDB)
	searchRepo := repository.NewGormFlightSearchRepository(gormDB)
	priceRepo := repository.NewGormPriceRecordRepository(gormDB)
	alertRepo := repository.NewGormAlertRepository(gormDB)

	// 6. Сервисы.
	identitySvc := service.NewIdentityService(userRepo, appLog, m)
	searchSvc := service.NewSearchService(userRepo, searchRepo, appLog, m)
	ledgerSvc := service.NewLedgerService(searchRepo, priceRepo, appLog, m)
	alertSvc := service.NewAlertService(alertRepo, appLog, m)
	monitorSvc := service.NewMonitorService(repository.NewStore(gormDB), ledgerSvc, alertSvc, appLog, m)

	// 7. gRPC-сервер.
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		server.UnaryRecoveryInterceptor(appLog),
		server.UnaryLoggingInterceptor(appLog),
	))
	server.RegisterPriceTrackerServer(grpcServer, server.NewPriceTrackerServer(
		identitySvc, searchSvc, ledgerSvc, alertSvc, monitorSvc, appLog,
	))
	if cfg.GRPCReflection {
		reflection.Register(grpcServer)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		appLog.Fatal("listen", "addr", cfg.GRPCAddr, "error", err)
	}

	go func() {
		appLog.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			appLog.Fatal("grpc serve", "error", err)
		}
	}()

	// 8. HTTP: health + /metrics.
	opsApp := ops.NewApp(sqlDB, registry, appLog)
	go func() {
		appLog.Info("ops server listening", "addr", cfg.HTTPAddr)
		if err := opsApp.Listen(cfg.HTTPAddr); err != nil {
			appLog.Fatal("ops listen", "error", err)
		}
	}()

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	appLog.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := opsApp.ShutdownWithContext(ctx); err != nil {
		appLog.Warn("ops shutdown", "error", err)
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		appLog.Warn("graceful stop timed out, forcing")
		grpcServer.Stop()
	}
}
