package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hydra-arena/hydra-control-plane/internal/config"
	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/kube"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/metrics"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/statusreader"
	httpinterface "github.com/hydra-arena/hydra-control-plane/internal/interfaces/http"
)

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "keep the status of the nodes of the namespace up to date",
	RunE:  operatorAction,
}

func operatorAction(_ *cobra.Command, _ []string) error {
	ctx, cancel, err := setup()
	if err != nil {
		return err
	}
	defer cancel()

	kubeClient, err := kube.NewDynamicClient(config.GetString(config.KubeconfigKey))
	if err != nil {
		return err
	}

	namespace := config.GetString(config.NamespaceKey)
	directory := application.NewNodeDirectory(
		namespace, kube.NewNodeWatcher(kubeClient, namespace),
	)
	interval := config.GetDuration(config.StatusIntervalKey)
	patcher := application.NewStatusPatcher(
		directory,
		statusreader.NewStatusReader(),
		kube.NewNodeStatusWriter(kubeClient, namespace),
		application.NodeURLs{
			SidecarPort:    config.GetInt(config.SidecarPortKey),
			ExternalDomain: config.GetString(config.ExternalDomainKey),
		},
		interval,
		config.GetInt(config.ScrapeRateKey),
	)

	controlPlaneMetrics := metrics.NewControlPlaneMetrics()
	metricsSvc := httpinterface.NewService(
		config.GetInt(config.MetricsPortKey), controlPlaneMetrics.Handler(),
	)
	if err := metricsSvc.Start(); err != nil {
		return err
	}
	defer metricsSvc.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return directory.Start(gctx)
	})
	g.Go(func() error {
		return patcher.Start(gctx)
	})
	g.Go(func() error {
		countNodes(gctx, directory, controlPlaneMetrics, interval)
		return nil
	})

	log.Infof("operator started on namespace %s", namespace)
	err = g.Wait()
	log.Info("operator stopped")
	return err
}

func countNodes(
	ctx context.Context, directory *application.NodeDirectory,
	m *metrics.ControlPlaneMetrics, interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts := make(map[string]int)
			for _, n := range directory.ListNodes() {
				counts[n.Status.NodeState.String()]++
			}
			m.SetNodeCounts(counts)
		}
	}
}
