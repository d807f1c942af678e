package service

// Service is the start/stop contract shared by the long-running components of the CLI (the ticker
// watcher and the CSV writer).
type Service interface {

	//
	// Start fires up the service and returns a channel that yields true once start up is complete.
	// It is up to the caller to not start a service that is already running.
	//
	Start() (<-chan bool, error)

	//
	// Stop tells the service to shut down and returns a channel that yields true once it has fully
	// terminated. Stopping a service that is not running is an error.
	//
	Stop() (<-chan bool, error)
}
