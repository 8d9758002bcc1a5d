// Package gamestate maps the game datum stored at the game validator address
// to and from its Plutus data representation.
package gamestate

import (
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

const gameStateFields = 7

// GameState is the datum of the game UTxO.
type GameState struct {
	Referee     PaymentCredential
	PlayerCount uint64
	BotCount    uint64
	Players     []PaymentCredential
	State       State
	Winner      *PaymentCredential
	Cheater     *PaymentCredential
}

// New returns the initial datum of a game in the Lobby state.
func New(referee PaymentCredential, playerCount, botCount uint64) GameState {
	return GameState{
		Referee:     referee,
		PlayerCount: playerCount,
		BotCount:    botCount,
		State:       Lobby,
	}
}

// WithState returns a copy of g in the given state.
func (g GameState) WithState(s State) GameState {
	next := g.clone()
	next.State = s
	return next
}

// WithPlayer returns a copy of g with p appended to the players.
func (g GameState) WithPlayer(p PaymentCredential) GameState {
	next := g.clone()
	next.Players = append(next.Players, p)
	return next
}

func (g GameState) clone() GameState {
	next := g
	if g.Players != nil {
		next.Players = append([]PaymentCredential(nil), g.Players...)
	}
	if g.Winner != nil {
		w := *g.Winner
		next.Winner = &w
	}
	if g.Cheater != nil {
		c := *g.Cheater
		next.Cheater = &c
	}
	return next
}

// ToData encodes the 7 fields in wire order: referee, player count, bot
// count, players, state, winner, cheater.
func (g GameState) ToData() plutus.Data {
	players := make(plutus.List, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, p.ToData())
	}

	return plutus.NewConstr(
		0,
		g.Referee.ToData(),
		plutus.NewUint(g.PlayerCount),
		plutus.NewUint(g.BotCount),
		players,
		g.State.ToData(),
		optionToData(g.Winner),
		optionToData(g.Cheater),
	)
}

// Encode returns the CBOR bytes of the datum.
func (g GameState) Encode() ([]byte, error) {
	return plutus.Encode(g.ToData())
}

// Decode parses CBOR bytes into a GameState.
func Decode(buf []byte) (GameState, error) {
	d, err := plutus.Decode(buf)
	if err != nil {
		return GameState{}, fmt.Errorf("%w: %s", ErrInvalidDatum, err)
	}
	return FromData(d)
}

// FromData decodes a GameState. Any deviation from the expected shape is
// reported as ErrInvalidDatum.
func FromData(d plutus.Data) (GameState, error) {
	fields, err := expectConstr(d, 0, gameStateFields)
	if err != nil {
		return GameState{}, fmt.Errorf("game state: %w", err)
	}

	referee, err := PaymentCredentialFromData(fields[0])
	if err != nil {
		return GameState{}, fmt.Errorf("referee: %w", err)
	}
	playerCount, err := uintFromData(fields[1])
	if err != nil {
		return GameState{}, fmt.Errorf("player count: %w", err)
	}
	botCount, err := uintFromData(fields[2])
	if err != nil {
		return GameState{}, fmt.Errorf("bot count: %w", err)
	}

	list, ok := fields[3].(plutus.List)
	if !ok {
		return GameState{}, fmt.Errorf(
			"players: %w: expected list, got %T", ErrInvalidDatum, fields[3],
		)
	}
	var players []PaymentCredential
	for i, item := range list {
		p, err := PaymentCredentialFromData(item)
		if err != nil {
			return GameState{}, fmt.Errorf("player %d: %w", i, err)
		}
		players = append(players, p)
	}

	state, err := StateFromData(fields[4])
	if err != nil {
		return GameState{}, err
	}
	winner, err := optionFromData(fields[5])
	if err != nil {
		return GameState{}, fmt.Errorf("winner: %w", err)
	}
	cheater, err := optionFromData(fields[6])
	if err != nil {
		return GameState{}, fmt.Errorf("cheater: %w", err)
	}

	return GameState{
		Referee:     referee,
		PlayerCount: playerCount,
		BotCount:    botCount,
		Players:     players,
		State:       state,
		Winner:      winner,
		Cheater:     cheater,
	}, nil
}

// optionToData uses the canonical two constructor option: Some is tag 121
// with one field, None is tag 122 with no fields.
func optionToData(c *PaymentCredential) plutus.Data {
	if c == nil {
		return plutus.NewConstr(1)
	}
	return plutus.NewConstr(0, c.ToData())
}

func optionFromData(d plutus.Data) (*PaymentCredential, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return nil, fmt.Errorf("%w: expected option constructor, got %T", ErrInvalidDatum, d)
	}
	switch c.Index {
	case 0:
		fields, err := expectConstr(d, 0, 1)
		if err != nil {
			return nil, err
		}
		cred, err := PaymentCredentialFromData(fields[0])
		if err != nil {
			return nil, err
		}
		return &cred, nil
	case 1:
		if _, err := expectConstr(d, 1, 0); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf(
			"%w: unknown option constructor tag %d", ErrInvalidDatum, tagOf(c.Index),
		)
	}
}

func uintFromData(d plutus.Data) (uint64, error) {
	i, ok := d.(plutus.Int)
	if !ok {
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrInvalidDatum, d)
	}
	v, err := i.Uint64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDatum, err)
	}
	return v, nil
}
