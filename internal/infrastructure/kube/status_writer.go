package kube

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

// NodeStatusWriter patches the status subresource of node resources.
type NodeStatusWriter struct {
	client    dynamic.Interface
	namespace string
}

func NewNodeStatusWriter(client dynamic.Interface, namespace string) *NodeStatusWriter {
	return &NodeStatusWriter{client, namespace}
}

// PatchNodeStatus implements ports.NodeStatusWriter with a merge patch.
func (w *NodeStatusWriter) PatchNodeStatus(
	ctx context.Context, name string, status domain.NodeStatus,
) error {
	patch, err := json.Marshal(map[string]interface{}{
		"status": statusToMap(status),
	})
	if err != nil {
		return err
	}

	if _, err := w.client.Resource(NodeResource).Namespace(w.namespace).Patch(
		ctx, name, types.MergePatchType, patch, metav1.PatchOptions{}, "status",
	); err != nil {
		return fmt.Errorf("failed to patch status of node %s: %w", name, err)
	}
	return nil
}
