package httpinterface

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/metrics"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

const maxBodySize = 1 << 16

// GameService is the application layer served over http.
type GameService interface {
	ListNodes() []domain.Node
	GetNode(name string) (*domain.Node, error)
	NewGame(ctx context.Context, req application.NewGameRequest) (*application.NewGameResult, error)
	AddPlayer(ctx context.Context, nodeName, player string) (string, error)
	StartGame(ctx context.Context, nodeName string) (string, error)
	CleanupGame(ctx context.Context, nodeName string) (string, error)
	CommitFunds(ctx context.Context, nodeName string, utxos cardano.UTxOs) (string, error)
	AdminBalance(ctx context.Context, nodeName string) (*application.AdminBalance, error)
}

type handler struct {
	svc     GameService
	metrics *metrics.ControlPlaneMetrics
}

// NewHandler returns the http interface of the rpc tier.
func NewHandler(svc GameService, m *metrics.ControlPlaneMetrics) http.Handler {
	h := &handler{svc, m}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /nodes", h.listNodes)
	mux.HandleFunc("GET /nodes/{name}", h.getNode)
	mux.HandleFunc("POST /nodes/{name}/commit", h.commitFunds)
	mux.HandleFunc("POST /games", h.newGame)
	mux.HandleFunc("POST /games/{node}/players", h.addPlayer)
	mux.HandleFunc("POST /games/{node}/start", h.startGame)
	mux.HandleFunc("POST /games/{node}/cleanup", h.cleanupGame)
	mux.HandleFunc("GET /admin/balance", h.adminBalance)
	mux.Handle("GET /metrics", m.Handler())

	return cors.AllowAll().Handler(withLogger(mux))
}

func (h *handler) listNodes(w http.ResponseWriter, _ *http.Request) {
	nodes := h.svc.ListNodes()

	counts := make(map[string]int)
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		counts[n.Status.NodeState.String()]++
		views = append(views, toNodeView(n))
	}
	h.metrics.SetNodeCounts(counts)

	writeJSON(w, http.StatusOK, views)
}

func (h *handler) getNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNodeView(*node))
}

func (h *handler) commitFunds(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if !readJSON(w, r, &req) {
		return
	}
	utxos, err := hydra.DecodeUTxOs(req.UTxO)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	txID, err := h.svc.CommitFunds(r.Context(), r.PathValue("name"), utxos)
	h.metrics.ObserveOperation("commit", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *handler) newGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if !readJSON(w, r, &req) {
		return
	}

	res, err := h.svc.NewGame(r.Context(), application.NewGameRequest{
		Player:      req.Player,
		PlayerCount: req.PlayerCount,
		BotCount:    req.BotCount,
	})
	h.metrics.ObserveOperation("new_game", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGameResponse{
		Node:      toNodeView(res.Node),
		SessionID: res.SessionID,
		TxID:      res.TxID,
	})
}

func (h *handler) addPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if !readJSON(w, r, &req) {
		return
	}

	txID, err := h.svc.AddPlayer(r.Context(), r.PathValue("node"), req.Player)
	h.metrics.ObserveOperation("add_player", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *handler) startGame(w http.ResponseWriter, r *http.Request) {
	txID, err := h.svc.StartGame(r.Context(), r.PathValue("node"))
	h.metrics.ObserveOperation("start_game", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *handler) cleanupGame(w http.ResponseWriter, r *http.Request) {
	txID, err := h.svc.CleanupGame(r.Context(), r.PathValue("node"))
	h.metrics.ObserveOperation("cleanup_game", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *handler) adminBalance(w http.ResponseWriter, r *http.Request) {
	nodeName := r.URL.Query().Get("node")
	if nodeName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing node query parameter"})
		return
	}

	balance, err := h.svc.AdminBalance(r.Context(), nodeName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		Address:  balance.Address,
		Lovelace: balance.Lovelace,
		ADA:      balance.ADA.String(),
		Assets:   balance.Assets,
	})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

