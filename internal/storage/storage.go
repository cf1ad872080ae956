package storage

import (
	"context"
	"errors"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
)

// ErrNotFound is returned when a save slot does not exist.
var ErrNotFound = errors.New("save slot not found")

// Storage defines a unified interface for all storage operations:
// engine state persistence (Redis or sqlite) plus static content
// catalog loading (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Engine state operations (save slots)
	SaveState(ctx context.Context, slot string, st *engine.State) error
	LoadState(ctx context.Context, slot string) (*engine.State, error)
	DeleteState(ctx context.Context, slot string) error
	ListStates(ctx context.Context) ([]string, error)

	// Content catalog operations (filesystem-backed)
	DramaCatalog(ctx context.Context) ([]*drama.Template, error)
	InterviewCatalog(ctx context.Context) ([]*interview.Template, error)
}
