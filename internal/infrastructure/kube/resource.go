// Package kube adapts the HydraDoomNode custom resources of a cluster to the
// node directory.
package kube

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

const (
	Group    = "hydra.doom"
	Version  = "v1alpha1"
	Kind     = "HydraDoomNode"
	ListKind = "HydraDoomNodeList"
	Resource = "hydradoomnodes"
)

// NodeResource identifies the node custom resource.
var NodeResource = schema.GroupVersionResource{
	Group:    Group,
	Version:  Version,
	Resource: Resource,
}

// NodeFromUnstructured converts a node resource. Missing status fields keep
// their zero value, that is Offline and Waiting.
func NodeFromUnstructured(obj *unstructured.Unstructured) (domain.Node, error) {
	content := obj.UnstructuredContent()
	node := domain.Node{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
		CreatedAt: obj.GetCreationTimestamp().Time,
	}

	var err error
	spec := &node.Spec
	if spec.Offline, _, err = unstructured.NestedBool(content, "spec", "offline"); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if spec.Asleep, _, err = unstructured.NestedBool(content, "spec", "asleep"); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	networkID, err := nestedInt(content, "spec", "networkId")
	if err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	spec.NetworkID = uint8(networkID)
	if spec.SeedInput, _, err = unstructured.NestedString(content, "spec", "seedInput"); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if spec.CommitInputs, _, err = unstructured.NestedStringSlice(
		content, "spec", "commitInputs",
	); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if spec.Resources.CPU, _, err = unstructured.NestedString(
		content, "spec", "resources", "cpu",
	); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if spec.Resources.Memory, _, err = unstructured.NestedString(
		content, "spec", "resources", "memory",
	); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}

	status := &node.Status
	nodeState, _, err := unstructured.NestedString(content, "status", "nodeState")
	if err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if status.NodeState, err = domain.ParseNodeState(nodeState); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	gameState, _, err := unstructured.NestedString(content, "status", "gameState")
	if err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if status.GameState, err = domain.ParseGameState(gameState); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if status.Transactions, err = nestedInt(content, "status", "transactions"); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if status.LocalURL, _, err = unstructured.NestedString(content, "status", "localUrl"); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	if status.ExternalURL, _, err = unstructured.NestedString(
		content, "status", "externalUrl",
	); err != nil {
		return domain.Node{}, wrapFieldError(obj, err)
	}
	return node, nil
}

// NodeToUnstructured is the inverse of NodeFromUnstructured.
func NodeToUnstructured(node domain.Node) *unstructured.Unstructured {
	spec := map[string]interface{}{
		"offline":   node.Spec.Offline,
		"asleep":    node.Spec.Asleep,
		"networkId": int64(node.Spec.NetworkID),
		"seedInput": node.Spec.SeedInput,
		"resources": map[string]interface{}{
			"cpu":    node.Spec.Resources.CPU,
			"memory": node.Spec.Resources.Memory,
		},
	}
	if len(node.Spec.CommitInputs) > 0 {
		inputs := make([]interface{}, 0, len(node.Spec.CommitInputs))
		for _, in := range node.Spec.CommitInputs {
			inputs = append(inputs, in)
		}
		spec["commitInputs"] = inputs
	}

	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": Group + "/" + Version,
		"kind":       Kind,
		"spec":       spec,
		"status":     statusToMap(node.Status),
	}}
	obj.SetName(node.Name)
	obj.SetNamespace(node.Namespace)
	obj.SetCreationTimestamp(metav1.NewTime(node.CreatedAt))
	return obj
}

func statusToMap(status domain.NodeStatus) map[string]interface{} {
	return map[string]interface{}{
		"nodeState":    status.NodeState.String(),
		"gameState":    status.GameState.String(),
		"transactions": status.Transactions,
		"localUrl":     status.LocalURL,
		"externalUrl":  status.ExternalURL,
	}
}

// nestedInt reads a number stored either as int64 or float64.
func nestedInt(obj map[string]interface{}, fields ...string) (int64, error) {
	val, found, err := unstructured.NestedFieldNoCopy(obj, fields...)
	if err != nil || !found || val == nil {
		return 0, err
	}
	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	}
	return 0, fmt.Errorf("%v accessor error: %v is of the type %T, expected int64", fields, val, val)
}

func wrapFieldError(obj *unstructured.Unstructured, err error) error {
	return fmt.Errorf("invalid node resource %s/%s: %w", obj.GetNamespace(), obj.GetName(), err)
}
