package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinportal/recruitment-stats/conf"
	"github.com/clinportal/recruitment-stats/internal/repository"
	"github.com/clinportal/recruitment-stats/internal/service"
	"github.com/clinportal/recruitment-stats/internal/web"
)

// main конфигурирует сервис, поднимает хранилище, сервис статистики и HTTP-сервер,
// а затем управляет их жизненным циклом.
func main() {
	// Берём путь до конфигурации из окружения либо используем значение по умолчанию.
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./conf/config.json"
	}

	// Загружаем конфигурацию.
	config := conf.MustLoad(cfgPath)
	slog.Info("Configuration loaded successfully", "config_path", cfgPath)
	slog.Info("Database configuration", "host", config.DBConf.Host, "port", config.DBConf.Port, "user", config.DBConf.User, "database", config.DBConf.Name)

	// Создаём подключение к базе данных.
	ctx := context.Background()
	storage, err := repository.NewStorage(ctx, &config.DBConf, config.StatsConf)
	if err != nil {
		slog.Error("Database initialization failed", "error", err)
		os.Exit(1)
	}
	defer storage.Close()
	slog.Info("Database storage initialized successfully")

	// Создаём менеджер статистики набора.
	recruitmentManager := service.NewRecruitmentManager(storage)
	slog.Info("Recruitment manager created successfully")

	// Поднимаем HTTP-сервер.
	server := web.New(config.HTTPServConf, recruitmentManager)
	slog.Info("HTTP server created successfully", "address", server.Address)

	// Запускаем сервер в отдельной горутине.
	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Recruitment statistics service started successfully", "address", server.Address)

	// Ожидаем сигнал остановки для плавного завершения работы.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	// Выполняем корректное завершение сервера с тайм-аутом.
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
