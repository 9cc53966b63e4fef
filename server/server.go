package server

// Server is a transport boundary over the agent. Run blocks until the
// listener fails or Stop is called.
type Server interface {
	Run() error
	Stop() error
}
