package main

import (
	"os"
	"os/signal"
	"syscall"

	"spikewatch/config"
	"spikewatch/internal/watcher"
	"spikewatch/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// run the ingestion/detection pipeline
	w, err := watcher.Start(cfg, log)
	if err != nil {
		log.Fatal("watcher failed to start", zap.Error(err))
	}

	// shut down cleanly on SIGINT/SIGTERM so buffered batches get flushed
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("shutting down", zap.String("signal", sig.String()))
	w.Close()
}
