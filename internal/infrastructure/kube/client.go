package kube

import (
	"fmt"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewDynamicClient connects to the cluster described by kubeconfig, or to
// the cluster the process runs in if kubeconfig is empty.
func NewDynamicClient(kubeconfig string) (dynamic.Interface, error) {
	var (
		cfg *rest.Config
		err error
	)
	if kubeconfig == "" {
		cfg, err = rest.InClusterConfig()
	} else {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster config: %w", err)
	}
	return dynamic.NewForConfig(cfg)
}
