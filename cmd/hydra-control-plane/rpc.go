package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hydra-arena/hydra-control-plane/internal/config"
	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/kube"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/metrics"
	nodeclient "github.com/hydra-arena/hydra-control-plane/internal/infrastructure/node-client"
	httpinterface "github.com/hydra-arena/hydra-control-plane/internal/interfaces/http"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "serve the game api over the nodes of the namespace",
	RunE:  rpcAction,
}

func rpcAction(_ *cobra.Command, _ []string) error {
	ctx, cancel, err := setup()
	if err != nil {
		return err
	}
	defer cancel()

	adminKey, err := config.GetAdminKey()
	if err != nil {
		return fmt.Errorf("invalid admin key: %w", err)
	}
	validator, err := config.GetValidator()
	if err != nil {
		return fmt.Errorf("invalid game validator: %w", err)
	}

	kubeClient, err := kube.NewDynamicClient(config.GetString(config.KubeconfigKey))
	if err != nil {
		return err
	}

	repoManager, err := newRepoManager()
	if err != nil {
		return err
	}
	defer repoManager.Close()

	namespace := config.GetString(config.NamespaceKey)
	directory := application.NewNodeDirectory(
		namespace, kube.NewNodeWatcher(kubeClient, namespace),
	)
	gameSvc := application.NewGameService(
		directory, nodeclient.NewFactory(), repoManager, adminKey, validator,
		config.GetDuration(config.ConfirmTimeoutKey),
	)

	httpSvc := httpinterface.NewService(
		config.GetInt(config.RPCPortKey),
		httpinterface.NewHandler(gameSvc, metrics.NewControlPlaneMetrics()),
	)
	if err := httpSvc.Start(); err != nil {
		return err
	}
	defer httpSvc.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return directory.Start(gctx)
	})

	log.Infof("rpc tier started on namespace %s", namespace)
	err = g.Wait()
	log.Info("rpc tier stopped")
	return err
}
