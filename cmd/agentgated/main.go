package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kovacsdev/agentgate/internal/config"
	"github.com/kovacsdev/agentgate/internal/core"
	"github.com/kovacsdev/agentgate/internal/httpapi"
	"github.com/kovacsdev/agentgate/internal/logging"
)

func main() {
	lock, lockErr := acquireDaemonLock()
	if lockErr != nil {
		fmt.Fprintf(os.Stderr, "agentgated failed to start: %v\n", lockErr)
		os.Exit(1)
	}
	defer lock.release()

	cfg, err := config.Load(strings.TrimSpace(os.Getenv("AGENTGATE_CONFIG_FILE")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentgated failed to load config: %v\n", err)
		lock.release()
		os.Exit(1)
	}

	logger := logging.New(slog.LevelInfo)
	executor := core.NewExecutor(cfg.ClaudeBinary)
	scheduler := core.NewScheduler(cfg.Core(), executor)
	server := httpapi.NewServer(cfg, scheduler, logger)

	address := "127.0.0.1:" + strconv.Itoa(cfg.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		_ = httpServer.Shutdown(context.Background())
	}()

	logger.Info("agentgated listening", "address", address)
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "agentgated failed: %v\n", serveErr)
		lock.release()
		os.Exit(1)
	}
}
