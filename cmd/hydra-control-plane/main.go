package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hydra-arena/hydra-control-plane/internal/config"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	dbbadger "github.com/hydra-arena/hydra-control-plane/internal/infrastructure/storage/db/badger"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/storage/db/inmemory"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:           "hydra-control-plane",
		Short:         "control plane of a fleet of hydra head nodes",
		Long:          "hydra-control-plane tracks the hydra nodes of a namespace, opens games on them and keeps their status up to date",
		Version:       formatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	app.AddCommand(rpcCmd, operatorCmd, sidecarCmd)
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

// setup loads the configuration and returns a context canceled on SIGINT
// or SIGTERM.
func setup() (context.Context, context.CancelFunc, error) {
	if err := config.InitConfig(); err != nil {
		return nil, nil, err
	}
	log.SetLevel(config.GetLogLevel())

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	return ctx, cancel, nil
}

func newRepoManager() (ports.RepoManager, error) {
	switch dbType := config.GetString(config.DBTypeKey); dbType {
	case config.DBInMemory:
		return inmemory.NewRepoManager(), nil
	case config.DBBadger:
		return dbbadger.NewRepoManager(config.GetDbDir(), log.StandardLogger())
	default:
		return nil, fmt.Errorf("unsupported db type %q", dbType)
	}
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
