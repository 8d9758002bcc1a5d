package domain

import (
	"fmt"
	"time"
)

// GameSessionStatus is the lifecycle step a game session reached.
type GameSessionStatus int

const (
	GameSessionCreated GameSessionStatus = iota
	GameSessionLobby
	GameSessionRunning
	GameSessionCleaned
	GameSessionFailed
)

var gameSessionStatusNames = map[GameSessionStatus]string{
	GameSessionCreated: "Created",
	GameSessionLobby:   "Lobby",
	GameSessionRunning: "Running",
	GameSessionCleaned: "Cleaned",
	GameSessionFailed:  "Failed",
}

func (s GameSessionStatus) String() string {
	if name, ok := gameSessionStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("GameSessionStatus(%d)", int(s))
}

// IsClosed tells whether no more steps can be applied to the session.
func (s GameSessionStatus) IsClosed() bool {
	return s == GameSessionCleaned || s == GameSessionFailed
}

// GameSession tracks the transactions submitted for a game hosted on a node.
type GameSession struct {
	ID            string
	NodeName      string
	Players       []string
	Status        GameSessionStatus
	NewGameTxID   string
	AddPlayerTxID []string
	StartTxID     string
	CleanupTxID   string
	FailureReason string
	CreatedAt     int64
	UpdatedAt     int64
}

// NewGameSession returns a session in Created status for the given node.
func NewGameSession(id, nodeName string) *GameSession {
	now := time.Now().Unix()
	return &GameSession{
		ID:        id,
		NodeName:  nodeName,
		Status:    GameSessionCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Open records the confirmed new game transaction and moves the session to
// Lobby. The player is optional.
func (s *GameSession) Open(txID, player string) error {
	if s.Status != GameSessionCreated {
		return s.transitionError("open")
	}
	s.NewGameTxID = txID
	if player != "" {
		s.Players = append(s.Players, player)
	}
	s.Status = GameSessionLobby
	s.touch()
	return nil
}

// AddPlayer records a confirmed add player transaction.
func (s *GameSession) AddPlayer(txID, player string) error {
	if s.Status != GameSessionLobby {
		return s.transitionError("add player")
	}
	s.AddPlayerTxID = append(s.AddPlayerTxID, txID)
	s.Players = append(s.Players, player)
	s.touch()
	return nil
}

// Start records the confirmed start game transaction.
func (s *GameSession) Start(txID string) error {
	if s.Status != GameSessionLobby {
		return s.transitionError("start")
	}
	s.StartTxID = txID
	s.Status = GameSessionRunning
	s.touch()
	return nil
}

// Cleanup records the confirmed cleanup transaction. Any open session can be
// cleaned up.
func (s *GameSession) Cleanup(txID string) error {
	if s.Status.IsClosed() {
		return s.transitionError("cleanup")
	}
	s.CleanupTxID = txID
	s.Status = GameSessionCleaned
	s.touch()
	return nil
}

// Fail closes the session with the given reason.
func (s *GameSession) Fail(reason string) {
	if s.Status.IsClosed() {
		return
	}
	s.FailureReason = reason
	s.Status = GameSessionFailed
	s.touch()
}

func (s *GameSession) touch() {
	s.UpdatedAt = time.Now().Unix()
}

func (s *GameSession) transitionError(step string) error {
	return fmt.Errorf(
		"%w: cannot %s session %s in status %s",
		ErrInvalidSessionTransition, step, s.ID, s.Status,
	)
}
