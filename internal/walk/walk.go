package treewalk

import (
	"errors"
	"io/fs"
)

// WalkFunc is called once per step of a Walk. For a successful step err is
// nil and d describes the entry; for a failed step d is nil, err carries the
// failure, and path names the entry or directory it relates to.
//
// Returning fs.SkipDir after a directory entry prevents descending into it.
// Returning fs.SkipAll ends the walk without error. Any other non-nil return
// aborts the walk and is returned from Walk.
type WalkFunc func(path string, d fs.DirEntry, err error) error

// Walk traverses the tree rooted at root in pre-order, calling fn for each
// entry. It is a convenience wrapper over Walker for callers that do not need
// the step-at-a-time contract. Like Walker, it never yields root itself.
func Walk(root string, fn WalkFunc) error {
	w, err := New(root)
	if err != nil {
		return err
	}
	defer w.Close()

	for w.Next() {
		var ferr error
		if stepErr := w.Err(); stepErr != nil {
			ferr = fn(w.Path(), nil, stepErr)
		} else {
			entry := w.Entry()
			ferr = fn(entry.Path, entry, nil)
		}

		switch {
		case ferr == nil:
		case errors.Is(ferr, fs.SkipDir):
			w.SkipDir()
		case errors.Is(ferr, fs.SkipAll):
			return nil
		default:
			return ferr
		}
	}
	return nil
}
