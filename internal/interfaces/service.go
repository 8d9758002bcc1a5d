package interfaces

// Service is a listener of the control plane (api, metrics) that the
// daemon starts before its workers and stops on shutdown. Start must not
// block.
type Service interface {
	Start() error
	Stop()
}
