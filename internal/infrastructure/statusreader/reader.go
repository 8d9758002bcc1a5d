// Package statusreader scrapes the metrics exposed by node sidecars.
package statusreader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/metrics"
	"github.com/hydra-arena/hydra-control-plane/pkg/util"
)

var (
	// ErrUnexpectedStatus ...
	ErrUnexpectedStatus = errors.New("unexpected metrics response status")
	// ErrMissingMetric is returned when a required gauge is not exposed.
	ErrMissingMetric = errors.New("missing metric")
	// ErrInvalidMetric ...
	ErrInvalidMetric = errors.New("invalid metric value")
)

var nodeStates = map[int]domain.NodeState{
	0: domain.NodeStateOffline,
	1: domain.NodeStateOnline,
	2: domain.NodeStateHeadIsInitializing,
	3: domain.NodeStateHeadIsOpen,
}

var gameStates = map[int]domain.GameState{
	0: domain.GameStateWaiting,
	1: domain.GameStateLobby,
	2: domain.GameStateRunning,
	3: domain.GameStateDone,
}

type reader struct{}

// NewStatusReader returns a ports.NodeStatusReader over http.
func NewStatusReader() ports.NodeStatusReader {
	return reader{}
}

func (reader) ReadNodeMetrics(ctx context.Context, url string) (*ports.NodeMetrics, error) {
	status, body, err := util.NewHTTPRequest(ctx, http.MethodGet, url, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}
	return ParseNodeMetrics(body)
}

// ParseNodeMetrics reads the node gauges from a text exposition.
func ParseNodeMetrics(text string) (*ports.NodeMetrics, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}

	state, err := readInt(families, metrics.NodeStateMetric)
	if err != nil {
		return nil, err
	}
	nodeState, ok := nodeStates[state]
	if !ok {
		return nil, fmt.Errorf("%w: %s=%d", ErrInvalidMetric, metrics.NodeStateMetric, state)
	}
	transactions, err := readInt(families, metrics.TransactionsMetric)
	if err != nil {
		return nil, err
	}

	res := &ports.NodeMetrics{
		NodeState:    nodeState,
		Transactions: int64(transactions),
	}

	if _, ok := families[metrics.GameStateMetric]; ok {
		value, err := readInt(families, metrics.GameStateMetric)
		if err != nil {
			return nil, err
		}
		gameState, ok := gameStates[value]
		if !ok {
			return nil, fmt.Errorf("%w: %s=%d", ErrInvalidMetric, metrics.GameStateMetric, value)
		}
		res.GameState = &gameState
	}
	return res, nil
}

// maxMetricValue is the largest integer a float64 sample holds exactly.
const maxMetricValue = 1 << 53

func readInt(families map[string]*dto.MetricFamily, name string) (int, error) {
	family, ok := families[name]
	if !ok || len(family.GetMetric()) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingMetric, name)
	}

	m := family.GetMetric()[0]
	var value float64
	switch {
	case m.Gauge != nil:
		value = m.GetGauge().GetValue()
	case m.Counter != nil:
		value = m.GetCounter().GetValue()
	case m.Untyped != nil:
		value = m.GetUntyped().GetValue()
	default:
		return 0, fmt.Errorf("%w: %s has no value", ErrInvalidMetric, name)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 ||
		value > maxMetricValue || value != math.Trunc(value) {
		return 0, fmt.Errorf("%w: %s=%v", ErrInvalidMetric, name, value)
	}
	return int(value), nil
}
