package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
)

const (
	// DefaultStatusInterval is the pause between two status rounds.
	DefaultStatusInterval = 5 * time.Second
	// DefaultScrapeRate is the max number of sidecars scraped per second.
	DefaultScrapeRate = 20

	nodePort = 4001
)

// NodeURLs derives the addresses of the services of a node.
type NodeURLs struct {
	SidecarPort    int
	ExternalDomain string
}

func (u NodeURLs) host(node domain.Node) string {
	return fmt.Sprintf("%s.%s.svc.cluster.local", node.Name, node.Namespace)
}

// Metrics returns the url of the sidecar metrics endpoint.
func (u NodeURLs) Metrics(node domain.Node) string {
	return fmt.Sprintf("http://%s:%d/metrics", u.host(node), u.SidecarPort)
}

// Local returns the in-cluster websocket url of the node.
func (u NodeURLs) Local(node domain.Node) string {
	return fmt.Sprintf("ws://%s:%d", u.host(node), nodePort)
}

// External returns the public websocket url of the node, if a domain is set.
func (u NodeURLs) External(node domain.Node) string {
	if u.ExternalDomain == "" {
		return ""
	}
	return fmt.Sprintf("wss://%s.%s", node.Name, u.ExternalDomain)
}

// StatusPatcher periodically scrapes the sidecar of every node of the
// directory and writes the derived status back to the cluster.
type StatusPatcher struct {
	directory *NodeDirectory
	reader    ports.NodeStatusReader
	writer    ports.NodeStatusWriter
	urls      NodeURLs
	interval  time.Duration
	limiter   ratelimit.Limiter
}

func NewStatusPatcher(
	directory *NodeDirectory,
	reader ports.NodeStatusReader,
	writer ports.NodeStatusWriter,
	urls NodeURLs,
	interval time.Duration,
	scrapeRate int,
) *StatusPatcher {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	if scrapeRate <= 0 {
		scrapeRate = DefaultScrapeRate
	}
	return &StatusPatcher{
		directory: directory,
		reader:    reader,
		writer:    writer,
		urls:      urls,
		interval:  interval,
		limiter:   ratelimit.New(scrapeRate),
	}
}

// Start patches the node statuses every interval until ctx is done.
func (p *StatusPatcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.PatchAll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// PatchAll runs a single status round. Nodes whose status did not change
// are not written.
func (p *StatusPatcher) PatchAll(ctx context.Context) {
	for _, node := range p.directory.ListNodes() {
		if ctx.Err() != nil {
			return
		}
		status := p.statusOf(ctx, node)
		if status == node.Status {
			continue
		}
		if err := p.writer.PatchNodeStatus(ctx, node.Name, status); err != nil {
			log.WithError(err).WithField("node", node.Name).Warn("failed to patch node status")
			continue
		}
		log.WithField("node", node.Name).Debugf(
			"status patched: %s/%s", status.NodeState, status.GameState,
		)
	}
}

func (p *StatusPatcher) statusOf(ctx context.Context, node domain.Node) domain.NodeStatus {
	var (
		metrics *ports.NodeMetrics
		err     error
	)
	if !node.Spec.Asleep && !node.Spec.Offline {
		p.limiter.Take()
		metrics, err = p.reader.ReadNodeMetrics(ctx, p.urls.Metrics(node))
		if err != nil {
			log.WithError(err).WithField("node", node.Name).Debug("failed to scrape sidecar")
		}
	}

	status := DeriveNodeStatus(node.Spec, metrics)
	status.LocalURL = p.urls.Local(node)
	status.ExternalURL = p.urls.External(node)
	return status
}

// DeriveNodeStatus computes the status of a node from its spec and the
// sidecar metrics, nil if they could not be read.
func DeriveNodeStatus(spec domain.NodeSpec, metrics *ports.NodeMetrics) domain.NodeStatus {
	switch {
	case spec.Asleep:
		return domain.NodeStatus{NodeState: domain.NodeStateSleeping}
	case spec.Offline, metrics == nil:
		return domain.NodeStatus{NodeState: domain.NodeStateOffline}
	}

	status := domain.NodeStatus{
		NodeState:    metrics.NodeState,
		Transactions: metrics.Transactions,
		GameState:    domain.GameStateWaiting,
	}
	if metrics.GameState != nil {
		status.GameState = *metrics.GameState
	}
	return status
}
