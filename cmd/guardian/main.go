package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sirupsen/logrus"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/config"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/coordination"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/correlation"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/eventstore"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/registry"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/scaling"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/server"
	"github.com/futureaiitofficial/anthos-guardian-agent/pkg/cluster"
	"github.com/futureaiitofficial/anthos-guardian-agent/pkg/guardian"
	"github.com/futureaiitofficial/anthos-guardian-agent/pkg/predictor"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	cfg := config.DefaultGuardianConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := eventstore.New(cfg.CorrelationWindow)
	agents := registry.New()
	correlator := correlation.New(store, agents, log)
	coord := coordination.New()

	clusterClient, err := cluster.New(cluster.Config{
		APIURL:    cfg.ClusterAPIURL,
		TokenFile: cfg.ClusterTokenFile,
		CAFile:    cfg.ClusterCAFile,
		Namespace: cfg.Namespace,
		Timeout:   cfg.ClusterTimeout,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create cluster client")
	}

	fraudClient := guardian.NewClient(guardian.Config{
		BaseURL: cfg.FinancialGuardianURL,
		Timeout: cfg.FinancialGuardianTimeout,
	}, log)

	var predict scaling.Predictor
	if cfg.AnthropicAPIKey != "" {
		predict = predictor.New(predictor.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  anthropic.Model(cfg.AnthropicModel),
		}, log)
		log.Info("AI-assisted scaling predictions enabled")
	} else {
		log.Warn("No Anthropic API key configured, using rule-based predictions")
	}

	thresholds := config.DefaultThresholds()
	if cfg.ThresholdsFile != "" {
		if loaded, err := config.LoadThresholds(cfg.ThresholdsFile); err != nil {
			log.WithError(err).Warn("Could not load thresholds file, using defaults")
		} else {
			thresholds = loaded
		}
	}

	engine := scaling.New(scaling.Config{
		MonitoredServices: cfg.MonitoredServices,
		MonitorInterval:   cfg.MonitorInterval,
		PredictTimeout:    cfg.PredictTimeout,
		Thresholds:        thresholds,
	}, clusterClient, predict, fraudClient, correlation.NewEventNotifier(correlator, log), coord, log)

	if cfg.ThresholdsFile != "" {
		watcher, err := config.NewThresholdWatcher(cfg.ThresholdsFile, engine.SetThresholds, log)
		if err != nil {
			log.WithError(err).Warn("Could not watch thresholds file")
		} else {
			go watcher.Start(ctx)
		}
	}

	if cfg.DisableAutoScaling {
		coord.Pause(scaling.Domain, "Auto-scaling disabled by DISABLE_AUTO_SCALING environment variable", "config")
	}
	engine.StartMonitoring(ctx)

	srv := server.New(cfg, correlator, engine, log)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Guardian server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down guardian service")
	engine.StopMonitoring()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
