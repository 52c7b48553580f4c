package ports

import (
	"context"
	"errors"

	"ideaboard/domain/core/entities"
)

// ErrKeyNotFound is returned by a KeyValueStore when the key has never been written
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable storage boundary.
// This is a port in hexagonal architecture - backends live under infrastructure/persistence/kv.
type KeyValueStore interface {
	// Get returns the raw value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Close releases backend resources
	Close() error
}

// NodePersistence loads and saves the whole node collection as one record.
// Implementations absorb every failure; callers never see storage errors.
type NodePersistence interface {
	Load(ctx context.Context) []entities.Node
	Save(ctx context.Context, nodes []entities.Node)
}

// ErrNoSuggestion signals a successful expansion that carried no suggestion.
// It is not a failure; callers substitute a placeholder.
var ErrNoSuggestion = errors.New("expansion service returned no suggestion")

// Expander turns a node's text into a suggestion for a related node
type Expander interface {
	Expand(ctx context.Context, text string) (string, error)
}

// NoticeLevel classifies a user-visible notice
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a message meant for the presentation layer
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	NodeID  string      `json:"nodeId,omitempty"`
}

// Notifier delivers notices to whatever renders them
type Notifier interface {
	Notify(notice Notice)
}
