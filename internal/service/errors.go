package service

import "errors"

var (
	ErrRemoteApply       = errors.New("remote apply failed")
	ErrUnknownItemKind   = errors.New("unknown queue item kind")
	ErrConflictNotFound  = errors.New("conflict not found")
	ErrConflictCleared   = errors.New("conflict was cleared before a decision")
	ErrInvalidResolution = errors.New("invalid conflict resolution")
	ErrInvalidStrategy   = errors.New("invalid conflict strategy")

	ErrOffline        = errors.New("remote store is not reachable")
	ErrSyncInProgress = errors.New("sync pass already in progress")

	ErrInvalidDataProvided = errors.New("invalid data provided")
)

var ErrVersionIsNotSpecified = errors.New("app version is not specified")
