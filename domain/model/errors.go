package model

import "errors"

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrServiceInvalid   = errors.New("service invalid")
	ErrProviderNotFound = errors.New("provider not found")
	ErrProviderInvalid  = errors.New("provider invalid")
	ErrStackNotFound    = errors.New("stack not found")
	ErrStackInvalid     = errors.New("stack invalid")

	// ErrStackNotDeployed is returned by drivers when the cloud stack does not exist.
	ErrStackNotDeployed = errors.New("stack not deployed")
)
