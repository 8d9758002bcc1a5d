package hydra

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/circuitbreaker"
	"github.com/hydra-arena/hydra-control-plane/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	txTypeWitnessed   = "Witnessed Tx BabbageEra"
	txTypeUnwitnessed = "Unwitnessed Tx BabbageEra"
	txDescription     = "Ledger Cddl Format"
)

// TxEnvelope is the text envelope of a transaction used by the node API.
type TxEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CBORHex     string `json:"cborHex"`
	TxID        string `json:"txId,omitempty"`
}

type newTxMessage struct {
	Tag         string     `json:"tag"`
	Transaction TxEnvelope `json:"transaction"`
}

type commitRequest struct {
	BlueprintTx TxEnvelope      `json:"blueprintTx"`
	UTxO        json.RawMessage `json:"utxo"`
}

// Client talks to a single node. Http queries go through a circuit breaker
// so that an unreachable node fails fast.
type Client struct {
	info    ConnectionInfo
	breaker *gobreaker.CircuitBreaker
	dialer  *websocket.Dialer
}

// NewClient returns a client of the node at info.
func NewClient(info ConnectionInfo) *Client {
	return &Client{
		info:    info,
		breaker: circuitbreaker.NewCircuitBreaker(info.Host),
		dialer:  websocket.DefaultDialer,
	}
}

// Info returns the node location.
func (c *Client) Info() ConnectionInfo {
	return c.info
}

// FetchUTxOs returns the UTxO set of the latest confirmed snapshot.
func (c *Client) FetchUTxOs(ctx context.Context) (cardano.UTxOs, error) {
	body, err := c.request(ctx, http.MethodGet, "/snapshot/utxo", "")
	if err != nil {
		return nil, err
	}
	return DecodeUTxOs([]byte(body))
}

// FetchProtocolParameters returns the protocol parameters of the head.
func (c *Client) FetchProtocolParameters(ctx context.Context) (*ProtocolParameters, error) {
	body, err := c.request(ctx, http.MethodGet, "/protocol-parameters", "")
	if err != nil {
		return nil, err
	}
	params := &ProtocolParameters{}
	if err := json.Unmarshal([]byte(body), params); err != nil {
		return nil, fmt.Errorf("%w: protocol parameters: %s", ErrDecode, err)
	}
	return params, nil
}

// Commit asks the node to draft a commit transaction from a blueprint
// spending the given layer one outputs. The returned draft still needs the
// signatures of the blueprint inputs.
func (c *Client) Commit(ctx context.Context, blueprint []byte, utxos cardano.UTxOs) ([]byte, error) {
	encoded, err := EncodeUTxOs(utxos)
	if err != nil {
		return nil, err
	}
	req, err := json.Marshal(commitRequest{
		BlueprintTx: TxEnvelope{
			Type:        txTypeUnwitnessed,
			Description: txDescription,
			CBORHex:     hex.EncodeToString(blueprint),
		},
		UTxO: encoded,
	})
	if err != nil {
		return nil, err
	}

	body, err := c.request(ctx, http.MethodPost, "/commit", string(req))
	if err != nil {
		return nil, err
	}
	var draft TxEnvelope
	if err := json.Unmarshal([]byte(body), &draft); err != nil {
		return nil, fmt.Errorf("%w: commit draft: %s", ErrDecode, err)
	}
	tx, err := hex.DecodeString(draft.CBORHex)
	if err != nil {
		return nil, fmt.Errorf("%w: commit draft: %s", ErrDecode, err)
	}
	return tx, nil
}

// SubmitCardanoTransaction submits a signed layer one transaction through
// the node.
func (c *Client) SubmitCardanoTransaction(ctx context.Context, tx []byte) error {
	req, err := json.Marshal(TxEnvelope{
		Type:        txTypeWitnessed,
		Description: txDescription,
		CBORHex:     hex.EncodeToString(tx),
	})
	if err != nil {
		return err
	}
	_, err = c.request(ctx, http.MethodPost, "/cardano-transaction", string(req))
	return err
}

func (c *Client) request(ctx context.Context, method, path, body string) (string, error) {
	url := c.info.HTTPURL() + path
	res, err := c.breaker.Execute(func() (interface{}, error) {
		status, resp, err := util.NewJSONRequest(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("%w: %s %s returned %d: %s", ErrUnexpectedStatus, method, path, status, resp)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// SubmitAndConfirm sends a signed transaction on a fresh websocket and waits
// until the node reports it valid, invalid, or timeout expires. On timeout
// the transaction was still sent and may be applied later.
func (c *Client) SubmitAndConfirm(
	ctx context.Context, txID string, tx []byte, timeout time.Duration,
) error {
	conn, _, err := c.dialer.DialContext(ctx, c.info.WebsocketURL()+"/?history=no", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.info, err)
	}
	defer conn.Close()

	result := make(chan error, 1)
	go func() {
		result <- waitForTx(conn, txID)
	}()

	msg := newTxMessage{
		Tag: "NewTx",
		Transaction: TxEnvelope{
			Type:        txTypeWitnessed,
			Description: txDescription,
			CBORHex:     hex.EncodeToString(tx),
			TxID:        txID,
		},
	}
	deadline := time.Now().Add(timeout)
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to send transaction %s: %w", txID, err)
	}
	if err := conn.WriteJSON(msg); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s not sent after %s", ErrTxTimeout, txID, timeout)
		}
		return fmt.Errorf("failed to send transaction %s: %w", txID, err)
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-timer.C:
		return fmt.Errorf("%w: %s after %s", ErrTxTimeout, txID, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitForTx reads events until one concerns txID. It returns when the
// connection is closed by the caller.
func waitForTx(conn *websocket.Conn, txID string) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("connection lost before confirmation: %w", err)
		}
		event, err := DecodeEvent(raw)
		if err != nil {
			log.WithError(err).Debug("skipping undecodable event")
			continue
		}
		switch e := event.(type) {
		case TxValid:
			if e.TxID == txID {
				return nil
			}
		case TxInvalid:
			if e.TxID == txID {
				return fmt.Errorf("%w: %s: %s", ErrTxRejected, txID, e.Reason)
			}
		case CommandFailed:
			if commandFailedFor(e, txID) {
				return fmt.Errorf("%w: %s: command failed", ErrTxRejected, txID)
			}
		}
	}
}

func commandFailedFor(e CommandFailed, txID string) bool {
	var input struct {
		Transaction TxEnvelope `json:"transaction"`
	}
	if err := json.Unmarshal(e.ClientInput, &input); err != nil {
		return false
	}
	return input.Transaction.TxID == txID
}

// IsUnavailable tells whether err means the node could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
