// Crucible Agent — выполняет подготовленные скрипты заданий
// на вычислительном узле.
//
// Agent:
//   - Получает задания из RabbitMQ (общая файловая система с CLI)
//   - Выполняет скрипт через bash в рабочем каталоге задания
//   - Публикует событие завершения, которое наблюдает диспетчер
//
// Агенты масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Crucible/internal/agent"
	"github.com/shaiso/Crucible/internal/remote"
	"github.com/shaiso/Crucible/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting crucible-agent")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RabbitMQ
	conn, err := remote.NewConnection(remote.BrokerURL(), logger)
	if err != nil {
		logger.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("broker connected")

	// Создаём топологию
	if err := remote.SetupTopology(ctx, conn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	prefetch := 1
	if v := os.Getenv("AGENT_PREFETCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			prefetch = n
		}
	}

	// Создаём agent
	a := agent.New(agent.Config{
		Conn:     conn,
		Prefetch: prefetch,
		Logger:   logger,
	})

	// Запускаем agent
	if err := a.Start(ctx); err != nil {
		logger.Error("failed to start agent", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("AGENT_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем agent
	a.Stop()
	logger.Info("crucible-agent stopped")
}
