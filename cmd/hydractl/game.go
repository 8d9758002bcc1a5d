package main

import (
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var (
	playerFlag = cli.StringFlag{
		Name:  "player",
		Usage: "bech32 address of the player",
	}
	playersFlag = cli.Uint64Flag{
		Name:  "players",
		Usage: "number of human players of the game",
		Value: 1,
	}
	botsFlag = cli.Uint64Flag{
		Name:  "bots",
		Usage: "number of bots of the game",
	}
)

var newgame = cli.Command{
	Name:   "newgame",
	Usage:  "open a game on the next available node",
	Flags:  []cli.Flag{&playerFlag, &playersFlag, &botsFlag},
	Action: newGameAction,
}

var addplayer = cli.Command{
	Name:      "addplayer",
	Usage:     "add a player to the lobby of a node",
	ArgsUsage: "<node>",
	Flags:     []cli.Flag{&playerFlag},
	Action:    addPlayerAction,
}

var startgame = cli.Command{
	Name:      "start",
	Usage:     "start the game of a node",
	ArgsUsage: "<node>",
	Action:    startGameAction,
}

var cleanupgame = cli.Command{
	Name:      "cleanup",
	Usage:     "clean up the finished game of a node",
	ArgsUsage: "<node>",
	Action:    cleanupGameAction,
}

var balance = cli.Command{
	Name:      "balance",
	Usage:     "show the admin balance on a node",
	ArgsUsage: "<node>",
	Action:    balanceAction,
}

func newGameAction(ctx *cli.Context) error {
	return call(ctx, http.MethodPost, "/games", map[string]interface{}{
		"player":      ctx.String(playerFlag.Name),
		"playerCount": ctx.Uint64(playersFlag.Name),
		"botCount":    ctx.Uint64(botsFlag.Name),
	})
}

func addPlayerAction(ctx *cli.Context) error {
	nodeName, err := nodeArg(ctx)
	if err != nil {
		return err
	}
	player := ctx.String(playerFlag.Name)
	if player == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	return call(ctx, http.MethodPost, "/games/"+nodeName+"/players", map[string]string{
		"player": player,
	})
}

func startGameAction(ctx *cli.Context) error {
	nodeName, err := nodeArg(ctx)
	if err != nil {
		return err
	}
	return call(ctx, http.MethodPost, "/games/"+nodeName+"/start", nil)
}

func cleanupGameAction(ctx *cli.Context) error {
	nodeName, err := nodeArg(ctx)
	if err != nil {
		return err
	}
	return call(ctx, http.MethodPost, "/games/"+nodeName+"/cleanup", nil)
}

func balanceAction(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	return call(ctx, http.MethodGet, "/admin/balance?node="+url.QueryEscape(name), nil)
}

func nodeArg(ctx *cli.Context) (string, error) {
	name := ctx.Args().First()
	if name == "" {
		return "", &invalidUsageError{ctx, ctx.Command.Name}
	}
	return url.PathEscape(name), nil
}
