// Package nodeclient builds hydra API clients for the nodes of the
// directory.
package nodeclient

import (
	"sync"

	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

// factory keeps one client per node url so that each node keeps its own
// circuit breaker across requests.
type factory struct {
	lock    sync.Mutex
	clients map[string]*hydra.Client
}

// NewFactory returns a ports.NodeClientFactory over pkg/hydra clients.
func NewFactory() ports.NodeClientFactory {
	return &factory{clients: make(map[string]*hydra.Client)}
}

func (f *factory) NewNodeClient(url string) (ports.NodeClient, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if client, ok := f.clients[url]; ok {
		return client, nil
	}

	info, err := hydra.ParseConnectionInfo(url)
	if err != nil {
		return nil, err
	}
	client := hydra.NewClient(info)
	f.clients[url] = client
	return client, nil
}
