package gamestate

import (
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

// State is the phase of a game as recorded on-chain. The numeric values are
// the constructor indexes of the wire encoding (tag 121 + value) and must
// not be renumbered.
type State uint64

const (
	Lobby State = iota
	Running
	Cheated
	Finished
	Aborted
)

var stateNames = map[State]string{
	Lobby:    "Lobby",
	Running:  "Running",
	Cheated:  "Cheated",
	Finished: "Finished",
	Aborted:  "Aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", uint64(s))
}

// IsTerminal reports whether no further game transition can happen.
func (s State) IsTerminal() bool {
	return s == Cheated || s == Finished || s == Aborted
}

// ToData encodes the state as a zero field constructor.
func (s State) ToData() plutus.Data {
	return plutus.NewConstr(uint64(s))
}

// StateFromData rejects any constructor that is not one of the five states.
func StateFromData(d plutus.Data) (State, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return 0, fmt.Errorf("%w: state: expected constructor, got %T", ErrInvalidDatum, d)
	}
	s := State(c.Index)
	if _, ok := stateNames[s]; !ok {
		return 0, fmt.Errorf(
			"%w: state: unknown constructor tag %d", ErrInvalidDatum, tagOf(c.Index),
		)
	}
	if len(c.Fields) != 0 {
		return 0, fmt.Errorf(
			"%w: state: constructor tag %d expects 0 fields, got %d",
			ErrInvalidDatum, tagOf(c.Index), len(c.Fields),
		)
	}
	return s, nil
}
