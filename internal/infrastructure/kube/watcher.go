package kube

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"

	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
)

var errResourceExpired = errors.New("resource version expired")

// NodeWatcher lists and watches the node resources of a namespace.
type NodeWatcher struct {
	client    dynamic.Interface
	namespace string
}

func NewNodeWatcher(client dynamic.Interface, namespace string) *NodeWatcher {
	return &NodeWatcher{client, namespace}
}

// Watch implements ports.NodeWatcher. A watch closed by the apiserver is
// resumed from the last seen resource version, an expired version triggers
// a relist. Any other failure is returned.
func (w *NodeWatcher) Watch(ctx context.Context, handler func(ports.NodeEvent)) error {
	for {
		resourceVersion, stream, err := w.relist(ctx, handler)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		for {
			resourceVersion, err = w.consume(ctx, stream, resourceVersion, handler)
			stream.Stop()
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, errResourceExpired) {
				log.Debug("node watch expired, relisting")
				break
			}
			if err != nil {
				return err
			}

			stream, err = w.resource().Watch(ctx, metav1.ListOptions{
				ResourceVersion:     resourceVersion,
				AllowWatchBookmarks: true,
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if apierrors.IsResourceExpired(err) || apierrors.IsGone(err) {
					break
				}
				return fmt.Errorf("failed to watch nodes: %w", err)
			}
		}
	}
}

func (w *NodeWatcher) resource() dynamic.ResourceInterface {
	return w.client.Resource(NodeResource).Namespace(w.namespace)
}

// relist lists every node and opens the watch before replaying the list, so
// that no change happening in between is lost.
func (w *NodeWatcher) relist(
	ctx context.Context, handler func(ports.NodeEvent),
) (string, watch.Interface, error) {
	list, err := w.resource().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	resourceVersion := list.GetResourceVersion()

	stream, err := w.resource().Watch(ctx, metav1.ListOptions{
		ResourceVersion:     resourceVersion,
		AllowWatchBookmarks: true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to watch nodes: %w", err)
	}

	handler(ports.NodeEvent{Type: ports.NodeEventInit})
	for i := range list.Items {
		node, err := NodeFromUnstructured(&list.Items[i])
		if err != nil {
			log.WithError(err).Warn("skipping node")
			continue
		}
		handler(ports.NodeEvent{Type: ports.NodeEventInitApply, Node: node})
	}
	handler(ports.NodeEvent{Type: ports.NodeEventInitDone})
	return resourceVersion, stream, nil
}

// consume forwards the events of stream until it is closed and returns the
// last seen resource version.
func (w *NodeWatcher) consume(
	ctx context.Context,
	stream watch.Interface,
	resourceVersion string,
	handler func(ports.NodeEvent),
) (string, error) {
	for {
		var (
			event watch.Event
			ok    bool
		)
		select {
		case <-ctx.Done():
			return resourceVersion, nil
		case event, ok = <-stream.ResultChan():
			if !ok {
				return resourceVersion, nil
			}
		}

		if event.Type == watch.Error {
			err := apierrors.FromObject(event.Object)
			if apierrors.IsResourceExpired(err) || apierrors.IsGone(err) {
				return resourceVersion, errResourceExpired
			}
			return resourceVersion, fmt.Errorf("node watch failed: %w", err)
		}

		obj, ok := event.Object.(*unstructured.Unstructured)
		if !ok {
			continue
		}
		if rv := obj.GetResourceVersion(); rv != "" {
			resourceVersion = rv
		}

		var eventType ports.NodeEventType
		switch event.Type {
		case watch.Added, watch.Modified:
			eventType = ports.NodeEventApply
		case watch.Deleted:
			eventType = ports.NodeEventDelete
		default:
			continue
		}

		node, err := NodeFromUnstructured(obj)
		if err != nil {
			log.WithError(err).Warn("skipping node event")
			continue
		}
		handler(ports.NodeEvent{Type: eventType, Node: node})
	}
}
