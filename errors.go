package stompbox

import (
	"errors"

	"github.com/cbegin/stompbox-go/internal/source"
)

var (
	// ErrInitialize reports that engine setup failed. The attempt is
	// retryable: the engine stays uninitialized.
	ErrInitialize = errors.New("stompbox: initialization failed")

	// ErrInitializing reports that a source switch arrived while sources
	// were still loading. Such calls are rejected rather than queued.
	ErrInitializing = errors.New("stompbox: initialization in progress")

	// ErrClosed reports use after Cleanup. A closed engine is terminal;
	// create a fresh instance.
	ErrClosed = errors.New("stompbox: engine closed")

	// ErrUnknownStage, ErrUnknownSource and ErrInvalidAmount reject a
	// call without mutating any state.
	ErrUnknownStage  = errors.New("stompbox: unknown stage")
	ErrUnknownSource = errors.New("stompbox: unknown source")
	ErrInvalidAmount = errors.New("stompbox: amount out of range")

	// ErrNotLoaded and ErrDecode surface source cache failures.
	ErrNotLoaded = source.ErrNotLoaded
	ErrDecode    = source.ErrDecode
)
