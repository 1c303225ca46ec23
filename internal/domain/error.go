package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrJobTerminal     = errors.New("job is in a terminal state")
	ErrQueueSaturated  = errors.New("worker queue full")
)
