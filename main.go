package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ayurbook/app"
	"ayurbook/utils"

	"go.uber.org/zap"
)

func main() {
	a, err := app.Init()
	if err != nil {
		utils.GetLogger().Sugar().Fatalf("main: failed to initialize: %v", err)
	}
	logger := a.Logger
	defer func() { _ = logger.Sync() }()

	for _, topic := range []string{utils.TopicTreatments, utils.TopicPackages, utils.TopicBookings, utils.TopicBookingDraft} {
		topic := topic
		_ = a.Events.Subscribe(topic, func() { logger.Debug("main: store changed", zap.String("topic", topic)) })
	}
	_ = a.Events.Subscribe(utils.TopicSession, func(signedIn bool) {
		logger.Info("main: session changed", zap.Bool("signedIn", signedIn))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := a.Start(ctx); err != nil {
		cancel()
		logger.Sugar().Fatalf("main: failed to restore session: %v", err)
	}
	cancel()

	treatments := a.Treatments.View()
	packages := a.Packages.View()
	logger.Sugar().Infof("main: storefront ready against %s: %d treatments, %d packages, currency %s",
		a.Config.APIBaseURL, treatments.TotalItems, packages.TotalItems, a.Session.Currency())
	for _, t := range treatments.Items {
		logger.Info("treatment", zap.String("id", t.ID), zap.String("name", t.Name), zap.Float64("price", t.Price), zap.String("currency", string(t.Currency)))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: shutting down")
}
