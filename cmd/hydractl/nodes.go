package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/urfave/cli/v2"
)

var nodes = cli.Command{
	Name:   "nodes",
	Usage:  "list the nodes of the namespace",
	Action: nodesAction,
}

var node = cli.Command{
	Name:      "node",
	Usage:     "show a node",
	ArgsUsage: "<name>",
	Action:    nodeAction,
}

var utxoFileFlag = cli.StringFlag{
	Name:     "utxo-file",
	Usage:    "path of the json file with the layer one utxos to commit",
	Required: true,
}

var commit = cli.Command{
	Name:      "commit",
	Usage:     "commit admin funds into the head of an initializing node",
	ArgsUsage: "<node>",
	Flags:     []cli.Flag{&utxoFileFlag},
	Action:    commitAction,
}

func nodesAction(ctx *cli.Context) error {
	return call(ctx, http.MethodGet, "/nodes", nil)
}

func nodeAction(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	return call(ctx, http.MethodGet, "/nodes/"+url.PathEscape(name), nil)
}

func commitAction(ctx *cli.Context) error {
	nodeName, err := nodeArg(ctx)
	if err != nil {
		return err
	}

	utxo, err := os.ReadFile(ctx.String(utxoFileFlag.Name))
	if err != nil {
		return err
	}
	if !json.Valid(utxo) {
		return fmt.Errorf("invalid json in %s", ctx.String(utxoFileFlag.Name))
	}

	return call(ctx, http.MethodPost, "/nodes/"+nodeName+"/commit", map[string]json.RawMessage{
		"utxo": utxo,
	})
}
