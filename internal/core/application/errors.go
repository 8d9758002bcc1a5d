package application

import "errors"

var (
	// ErrNoAvailableNodes is returned when every open node is busy or claimed.
	ErrNoAvailableNodes = errors.New("no available nodes")
	// ErrGameNotTerminal is returned when cleaning up a game that is still
	// in progress.
	ErrGameNotTerminal = errors.New("game is not over")
	// ErrInvalidPlayerAddress ...
	ErrInvalidPlayerAddress = errors.New("invalid player address")
	// ErrNodeNotReachable is returned when the node has no known url.
	ErrNodeNotReachable = errors.New("node url is unknown")
	// ErrHeadNotInitializing is returned when committing to a node whose
	// head is not collecting commits.
	ErrHeadNotInitializing = errors.New("head is not initializing")
	// ErrWatchClosed is returned when the node watch stream ends while the
	// directory is running.
	ErrWatchClosed = errors.New("node watch stream closed")
)
