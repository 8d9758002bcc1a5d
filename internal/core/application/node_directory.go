package application

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
)

const appliedQueueSize = 256

// NodeDirectory is a cache of the nodes of a namespace, kept up to date by a
// NodeWatcher, from which new games claim the node they run on.
//
// A claimed node is never selected again until a watch event shows its game
// left Waiting or the claim is released. The claim lock is always taken
// before the cache lock, and the cache lock is never held while waiting for
// the claim lock.
type NodeDirectory struct {
	namespace string
	watcher   ports.NodeWatcher

	lock    sync.RWMutex
	nodes   map[string]domain.Node
	relist  map[string]domain.Node
	relists bool
	synced  atomic.Bool

	claimLock sync.Mutex
	claims    map[string]bool
}

func NewNodeDirectory(namespace string, watcher ports.NodeWatcher) *NodeDirectory {
	return &NodeDirectory{
		namespace: namespace,
		watcher:   watcher,
		nodes:     make(map[string]domain.Node),
		claims:    make(map[string]bool),
	}
}

// Namespace returns the namespace the directory is scoped to.
func (d *NodeDirectory) Namespace() string {
	return d.namespace
}

// HasSynced tells whether the first full list of nodes was received.
func (d *NodeDirectory) HasSynced() bool {
	return d.synced.Load()
}

// Start keeps the cache in sync until ctx is done. A failed or closed watch
// is returned and must be treated as fatal.
func (d *NodeDirectory) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	applied := make(chan domain.Node, appliedQueueSize)

	g.Go(func() error {
		defer close(applied)
		return d.watcher.Watch(gctx, func(event ports.NodeEvent) {
			if !d.apply(event) {
				return
			}
			select {
			case applied <- event.Node:
			case <-gctx.Done():
			}
		})
	})
	g.Go(func() error {
		for node := range applied {
			d.releaseStarted(node)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() == nil {
		return ErrWatchClosed
	}
	return nil
}

// ListNodes returns a snapshot of the cached nodes, oldest first.
func (d *NodeDirectory) ListNodes() []domain.Node {
	d.lock.RLock()
	defer d.lock.RUnlock()

	nodes := make([]domain.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		nodes = append(nodes, n.Clone())
	}
	sortNodes(nodes)
	return nodes
}

// GetNode returns the cached node with the given name.
func (d *NodeDirectory) GetNode(name string) (*domain.Node, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	n, ok := d.nodes[name]
	if !ok {
		return nil, false
	}
	clone := n.Clone()
	return &clone, true
}

// SelectNodeForNewGame claims the oldest available node that is not already
// claimed. Ties on the creation time are broken by name. Filtering and
// claiming happen under the claim lock.
func (d *NodeDirectory) SelectNodeForNewGame() (*domain.Node, error) {
	d.claimLock.Lock()
	defer d.claimLock.Unlock()

	candidates := d.availableNodes()
	for _, n := range candidates {
		if d.claims[n.Name] {
			continue
		}
		d.claims[n.Name] = true
		node := n
		return &node, nil
	}
	return nil, ErrNoAvailableNodes
}

// Release drops the claim on the named node, if any.
func (d *NodeDirectory) Release(name string) {
	d.claimLock.Lock()
	defer d.claimLock.Unlock()

	delete(d.claims, name)
}

// IsClaimed tells whether the named node is claimed by a game.
func (d *NodeDirectory) IsClaimed(name string) bool {
	d.claimLock.Lock()
	defer d.claimLock.Unlock()

	return d.claims[name]
}

func (d *NodeDirectory) availableNodes() []domain.Node {
	d.lock.RLock()
	defer d.lock.RUnlock()

	nodes := make([]domain.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		if n.IsAvailable() {
			nodes = append(nodes, n.Clone())
		}
	}
	sortNodes(nodes)
	return nodes
}

// apply updates the cache and tells whether the node of the event must be
// checked against the claims.
func (d *NodeDirectory) apply(event ports.NodeEvent) bool {
	if event.Type != ports.NodeEventInit && event.Type != ports.NodeEventInitDone &&
		event.Node.Namespace != d.namespace {
		return false
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	switch event.Type {
	case ports.NodeEventInit:
		d.relist = make(map[string]domain.Node)
		d.relists = true
		return false
	case ports.NodeEventInitApply:
		if !d.relists {
			d.nodes[event.Node.Name] = event.Node.Clone()
			return true
		}
		d.relist[event.Node.Name] = event.Node.Clone()
		return true
	case ports.NodeEventInitDone:
		if d.relists {
			d.nodes = d.relist
		}
		d.relist = nil
		d.relists = false
		d.synced.Store(true)
		log.Debugf("node directory synced with %d nodes", len(d.nodes))
		return false
	case ports.NodeEventApply:
		d.nodes[event.Node.Name] = event.Node.Clone()
		return true
	case ports.NodeEventDelete:
		delete(d.nodes, event.Node.Name)
		if d.relists {
			delete(d.relist, event.Node.Name)
		}
		return true
	}
	return false
}

// releaseStarted drops the claim of a node whose game left Waiting, since
// the node is no longer available anyway.
func (d *NodeDirectory) releaseStarted(node domain.Node) {
	if node.Status.GameState == domain.GameStateWaiting {
		if _, ok := d.GetNode(node.Name); ok {
			return
		}
	}

	d.claimLock.Lock()
	defer d.claimLock.Unlock()

	if !d.claims[node.Name] {
		return
	}
	delete(d.claims, node.Name)
	log.WithField("node", node.Name).Infof(
		"node game state changed to %s, claim released", node.Status.GameState,
	)
}

func sortNodes(nodes []domain.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].OlderThan(nodes[j])
	})
}
