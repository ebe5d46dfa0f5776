package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nantokaworks/wheel-overlay/internal/catalog"
	"github.com/nantokaworks/wheel-overlay/internal/env"
	"github.com/nantokaworks/wheel-overlay/internal/ledger"
	"github.com/nantokaworks/wheel-overlay/internal/localdb"
	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"github.com/nantokaworks/wheel-overlay/internal/types"
	"github.com/nantokaworks/wheel-overlay/internal/version"
	"github.com/nantokaworks/wheel-overlay/internal/webserver"
	"github.com/nantokaworks/wheel-overlay/internal/wheel"
	"go.uber.org/zap"
)

func main() {
	logger.Init(false)
	defer logger.Sync()

	logger.Info("Starting wheel-overlay server", zap.String("version", version.String()))

	env.LoadEnv()
	if env.Value.DebugMode {
		logger.Init(true)
		logger.Info("Debug mode enabled")
	}

	db, err := localdb.SetupDB(env.Value.DBPath)
	if err != nil {
		logger.Fatal("Failed to setup database", zap.Error(err))
	}

	store := localdb.NewKVStore(db)
	sessionLedger := ledger.New(store)

	selector := wheel.NewSelector()
	animator := wheel.NewAnimator(selector, types.ModeReguler, catalog.Prizes(types.ModeReguler), env.Value.FrameInterval)
	animator.Start()

	webserver.InitWheel(animator, sessionLedger)
	webserver.RestoreSession()

	if err := webserver.StartWebServer(env.Value.ServerPort); err != nil {
		logger.Fatal("Failed to start web server", zap.Error(err))
	}

	logger.Info("Server started",
		zap.Int("port", env.Value.ServerPort),
		zap.String("overlay", fmt.Sprintf("http://localhost:%d/", env.Value.ServerPort)))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")

	animator.Close()
	webserver.Shutdown()
	if err := db.Close(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
