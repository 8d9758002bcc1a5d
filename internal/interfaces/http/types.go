package httpinterface

import (
	"encoding/json"
	"time"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

type nodeView struct {
	Name         string    `json:"name"`
	Namespace    string    `json:"namespace"`
	CreatedAt    time.Time `json:"createdAt"`
	Offline      bool      `json:"offline"`
	Asleep       bool      `json:"asleep"`
	NetworkID    uint8     `json:"networkId"`
	NodeState    string    `json:"nodeState"`
	GameState    string    `json:"gameState"`
	Transactions int64     `json:"transactions"`
	LocalURL     string    `json:"localUrl,omitempty"`
	ExternalURL  string    `json:"externalUrl,omitempty"`
}

func toNodeView(n domain.Node) nodeView {
	return nodeView{
		Name:         n.Name,
		Namespace:    n.Namespace,
		CreatedAt:    n.CreatedAt,
		Offline:      n.Spec.Offline,
		Asleep:       n.Spec.Asleep,
		NetworkID:    n.Spec.NetworkID,
		NodeState:    n.Status.NodeState.String(),
		GameState:    n.Status.GameState.String(),
		Transactions: n.Status.Transactions,
		LocalURL:     n.Status.LocalURL,
		ExternalURL:  n.Status.ExternalURL,
	}
}

type newGameRequest struct {
	Player      string `json:"player"`
	PlayerCount uint64 `json:"playerCount"`
	BotCount    uint64 `json:"botCount"`
}

type newGameResponse struct {
	Node      nodeView `json:"node"`
	SessionID string   `json:"sessionId"`
	TxID      string   `json:"txId"`
}

type commitRequest struct {
	// UTxO is the layer one set to commit, in the node api json format.
	UTxO json.RawMessage `json:"utxo"`
}

type addPlayerRequest struct {
	Player string `json:"player"`
}

type txResponse struct {
	TxID string `json:"txId"`
}

type balanceResponse struct {
	Address  string            `json:"address"`
	Lovelace uint64            `json:"lovelace"`
	ADA      string            `json:"ada"`
	Assets   map[string]uint64 `json:"assets"`
}

type errorResponse struct {
	Error string `json:"error"`
}
