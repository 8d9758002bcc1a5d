package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hydra-arena/hydra-control-plane/pkg/util"
)

var rpcFlag = cli.StringFlag{
	Name:    "rpcserver",
	Usage:   "address of the rpc tier",
	Value:   "http://localhost:8000",
	EnvVars: []string{"HYDRACTL_RPCSERVER"},
}

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "hydractl"
	app.Usage = "Command line interface for the hydra control plane"
	app.Flags = []cli.Flag{&rpcFlag}
	app.Commands = append(
		app.Commands,
		&nodes,
		&node,
		&commit,
		&newgame,
		&addplayer,
		&startgame,
		&cleanupgame,
		&balance,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func call(ctx *cli.Context, method, path string, body interface{}) error {
	var payload string
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = string(buf)
	}

	url := strings.TrimRight(ctx.String(rpcFlag.Name), "/") + path
	status, resp, err := util.NewJSONRequest(context.Background(), method, url, payload)
	if err != nil {
		return fmt.Errorf("unable to reach rpc server: %w", err)
	}
	if status >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal([]byte(resp), &e) == nil && e.Error != "" {
			return fmt.Errorf("%d: %s", status, e.Error)
		}
		return fmt.Errorf("%d: %s", status, resp)
	}

	printRespJSON(resp)
	return nil
}

func printRespJSON(resp string) {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(resp), "", "\t"); err != nil {
		fmt.Println(resp)
		return
	}
	fmt.Println(out.String())
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[hydractl] %v\n", err)
	}
	os.Exit(1)
}
