package walk

import (
	"context"

	internal "github.com/TFMV/treewalk/internal/walk"
)

// Re-export the traversal types from the internal package.
type (
	// Walker iterates over a directory tree in pre-order, one entry per
	// call to Next.
	Walker = internal.Walker

	// Entry is one filesystem object discovered during a walk.
	Entry = internal.Entry

	// Options configures a Walker.
	Options = internal.Options

	// WalkFunc is the callback signature for Walk.
	WalkFunc = internal.WalkFunc

	// Re-export watch types.
	WatchEvent   = internal.WatchEvent
	WatchOptions = internal.WatchOptions
	WatchMessage = internal.WatchMessage
	WatchResult  = internal.WatchResult
	WatchHandler = internal.WatchHandler
)

// Re-export the watch event constants.
const (
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// New opens root and returns a Walker positioned before its first entry.
func New(root string) (*Walker, error) {
	return internal.New(root)
}

// NewWithOptions is New with explicit Options.
func NewWithOptions(root string, opts Options) (*Walker, error) {
	return internal.NewWithOptions(root, opts)
}

// Walk traverses the tree rooted at root in pre-order, calling fn for each
// entry and for each failed step.
func Walk(root string, fn WalkFunc) error {
	return internal.Walk(root, fn)
}

// Watch monitors a directory tree for filesystem changes.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	return internal.Watch(ctx, root, opts, handler)
}
