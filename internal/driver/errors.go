package driver

import "errors"

var (
	ErrRunnerStopped = errors.New("runner is not running")
	ErrRunnerRunning = errors.New("runner already ran")
	ErrFlightTimeout = errors.New("pitch still in flight at the time limit")
)
