package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hydra-arena/hydra-control-plane/internal/config"
	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/metrics"
	httpinterface "github.com/hydra-arena/hydra-control-plane/internal/interfaces/http"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

var sidecarCmd = &cobra.Command{
	Use:   "sidecar",
	Short: "follow the local hydra node and expose its metrics",
	RunE:  sidecarAction,
}

func sidecarAction(_ *cobra.Command, _ []string) error {
	ctx, cancel, err := setup()
	if err != nil {
		return err
	}
	defer cancel()

	validator, err := config.GetValidator()
	if err != nil {
		return fmt.Errorf("invalid game validator: %w", err)
	}
	info, err := hydra.ParseConnectionInfo(config.GetString(config.SidecarNodeURLKey))
	if err != nil {
		return err
	}

	channel := hydra.NewEventChannel(info, config.GetInt(config.ReconnectRateKey))
	nodeMetrics := metrics.NewNodeMetrics()
	monitor := application.NewNodeMonitor(
		channel, nodeMetrics, validator, config.GetNetworkID(),
	)

	metricsSvc := httpinterface.NewService(
		config.GetInt(config.SidecarPortKey), nodeMetrics.Handler(),
	)
	if err := metricsSvc.Start(); err != nil {
		return err
	}
	defer metricsSvc.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return channel.Start(gctx)
	})
	g.Go(func() error {
		return monitor.Start(gctx)
	})

	log.Infof("sidecar following node at %s", info)
	err = g.Wait()
	log.Info("sidecar stopped")
	return err
}
