package statusreader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/metrics"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/statusreader"
)

func TestReadNodeMetrics(t *testing.T) {
	t.Parallel()

	published := metrics.NewNodeMetrics()
	published.SetNodeState(domain.NodeStateHeadIsOpen)
	published.SetGameState(domain.GameStateRunning)
	published.AddTransactions(5)
	published.AddTransactions(2)

	server := httptest.NewServer(published.Handler())
	defer server.Close()

	res, err := statusreader.NewStatusReader().ReadNodeMetrics(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, domain.NodeStateHeadIsOpen, res.NodeState)
	require.Equal(t, int64(7), res.Transactions)
	require.NotNil(t, res.GameState)
	require.Equal(t, domain.GameStateRunning, *res.GameState)
}

func TestReadNodeMetricsUnexpectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := statusreader.NewStatusReader().ReadNodeMetrics(context.Background(), server.URL)
	require.ErrorIs(t, err, statusreader.ErrUnexpectedStatus)
}

func TestParseNodeMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		text              string
		expectedState     domain.NodeState
		expectedTxs       int64
		expectedGameState *domain.GameState
		expectedError     error
	}{
		{
			name:          "without_game_state",
			text:          "# TYPE state gauge\nstate 2\n# TYPE transactions counter\ntransactions 0\n",
			expectedState: domain.NodeStateHeadIsInitializing,
		},
		{
			name:          "untyped",
			text:          "state 1\ntransactions 12\n",
			expectedState: domain.NodeStateOnline,
			expectedTxs:   12,
		},
		{
			name:          "missing_state",
			text:          "transactions 12\n",
			expectedError: statusreader.ErrMissingMetric,
		},
		{
			name:          "missing_transactions",
			text:          "state 3\n",
			expectedError: statusreader.ErrMissingMetric,
		},
		{
			name:          "state_out_of_range",
			text:          "state 4\ntransactions 0\n",
			expectedError: statusreader.ErrInvalidMetric,
		},
		{
			name:          "fractional_state",
			text:          "state 1.5\ntransactions 0\n",
			expectedError: statusreader.ErrInvalidMetric,
		},
		{
			name:          "infinite_transactions",
			text:          "state 3\ntransactions +Inf\n",
			expectedError: statusreader.ErrInvalidMetric,
		},
		{
			name:          "transactions_overflow",
			text:          "state 3\ntransactions 1e300\n",
			expectedError: statusreader.ErrInvalidMetric,
		},
		{
			name:          "game_state_out_of_range",
			text:          "state 3\ntransactions 0\ngame_state 9\n",
			expectedError: statusreader.ErrInvalidMetric,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := statusreader.ParseNodeMetrics(tt.text)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expectedState, res.NodeState)
			require.Equal(t, tt.expectedTxs, res.Transactions)
			require.Equal(t, tt.expectedGameState, res.GameState)
		})
	}
}
