// Package treewalk provides lazy, pre-order traversal of a directory tree.
//
// A Walker holds a stack of open directory handles and yields one filesystem
// entry per call to Next, without reading the whole tree up front. Entries
// within a directory come back in whatever order the operating system returns
// them; the walker does not sort or filter. Symbolic links are reported as
// themselves and never followed, so a link to a directory is yielded but not
// descended into.
package treewalk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

// Entry is one filesystem object discovered during a walk. It implements
// fs.DirEntry, with the file info already resolved.
type Entry struct {
	// Path is the walk root joined with the entry's location beneath it.
	Path string

	dirent fs.DirEntry
	info   fs.FileInfo
}

func (e Entry) Name() string               { return e.dirent.Name() }
func (e Entry) IsDir() bool                { return e.info.IsDir() }
func (e Entry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e Entry) Info() (fs.FileInfo, error) { return e.info, nil }

// Options configures a Walker.
type Options struct {
	// Logger receives debug records for handle pushes, pops and per-step
	// failures. Nil disables logging.
	Logger *zap.Logger
}

// frame is one open directory on the traversal stack.
type frame struct {
	dir  *os.File
	path string
}

// Walker iterates over a directory tree in pre-order: a directory is yielded
// before any of its contents, and its contents are yielded before any of its
// later siblings. The root itself is never yielded, only what lies beneath it.
//
// The usage pattern follows bufio.Scanner:
//
//	w, err := treewalk.New(root)
//	if err != nil { ... }
//	defer w.Close()
//	for w.Next() {
//		if err := w.Err(); err != nil {
//			// one unreadable entry, walk continues
//			continue
//		}
//		fmt.Println(w.Entry().Path)
//	}
//
// A Walker is not safe for concurrent use.
type Walker struct {
	stack []frame
	entry Entry
	err   error
	done  bool

	// descended reports whether the most recent step pushed a handle for
	// the yielded directory, so SkipDir knows what to undo.
	descended bool

	// A subdirectory that cannot be opened still has its entry yielded; the
	// open failure is queued here and becomes the next step.
	pendingPath string
	pendingErr  error

	logger *zap.Logger
}

// New opens root and returns a Walker positioned before its first entry.
// It fails if root does not exist, is not a directory, or cannot be opened
// for reading.
func New(root string) (*Walker, error) {
	return NewWithOptions(root, Options{})
}

// NewWithOptions is New with explicit Options.
func NewWithOptions(root string, opts Options) (*Walker, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := openDir(root)
	if err != nil {
		return nil, err
	}

	w := &Walker{logger: logger}
	w.push(frame{dir: dir, path: root})
	return w, nil
}

// openDir opens path for directory reading, rejecting non-directories.
func openDir(path string) (*os.File, error) {
	dir, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := dir.Stat()
	if err != nil {
		dir.Close()
		return nil, err
	}
	if !info.IsDir() {
		dir.Close()
		return nil, &fs.PathError{Op: "open", Path: path, Err: syscall.ENOTDIR}
	}
	return dir, nil
}

// Next advances the walk by one step. It returns false only when the walk is
// finished; once false it stays false. After a true return the caller must
// check Err before using Entry.
func (w *Walker) Next() bool {
	w.entry = Entry{}
	w.err = nil
	w.descended = false

	if w.done {
		return false
	}

	if w.pendingErr != nil {
		w.entry = Entry{Path: w.pendingPath}
		w.err = w.pendingErr
		w.pendingPath, w.pendingErr = "", nil
		return true
	}

	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]

		children, err := top.dir.ReadDir(1)
		if errors.Is(err, io.EOF) {
			w.pop()
			continue
		}
		if err != nil {
			// Drop the broken handle so the same failure is not
			// yielded forever; the walk resumes with the parent.
			path := top.path
			w.pop()
			w.entry = Entry{Path: path}
			w.err = fmt.Errorf("treewalk: read %s: %w", path, err)
			w.logger.Debug("read failed", zap.String("path", path), zap.Error(err))
			return true
		}

		child := children[0]
		path := filepath.Join(top.path, child.Name())

		info, err := child.Info()
		if err != nil {
			// The child is consumed and will not be yielded again.
			w.entry = Entry{Path: path}
			w.err = fmt.Errorf("treewalk: stat %s: %w", path, err)
			w.logger.Debug("stat failed", zap.String("path", path), zap.Error(err))
			return true
		}

		w.entry = Entry{Path: path, dirent: child, info: info}
		if info.IsDir() {
			// Eager descent: open now so the stack only ever holds
			// live handles. On failure the entry is still yielded;
			// the error becomes the next step.
			dir, err := openDir(path)
			if err != nil {
				w.pendingPath = path
				w.pendingErr = fmt.Errorf("treewalk: open %s: %w", path, err)
			} else {
				w.push(frame{dir: dir, path: path})
				w.descended = true
			}
		}
		return true
	}

	w.done = true
	return false
}

// Entry returns the entry yielded by the last call to Next. It is only valid
// when Next returned true and Err is nil.
func (w *Walker) Entry() Entry { return w.entry }

// Path returns the path of the last step. When Err is non-nil it names the
// path the failure relates to.
func (w *Walker) Path() string { return w.entry.Path }

// Err returns the error of the last step, or nil if the step yielded a usable
// entry. A non-nil Err does not end the walk.
func (w *Walker) Err() error { return w.err }

// SkipDir cancels the descent scheduled by the most recent step. It is a
// no-op unless the last yielded entry was a directory and the walk has not
// advanced since.
func (w *Walker) SkipDir() {
	if w.descended {
		w.pop()
		w.descended = false
	}
	// An unopenable directory the caller skips anyway is not an error.
	w.pendingPath, w.pendingErr = "", nil
}

// Close releases every directory handle still on the stack and marks the walk
// finished. It runs automatically when a walk reaches exhaustion; callers
// abandoning a walk early should invoke it themselves. Safe to call more than
// once.
func (w *Walker) Close() error {
	var first error
	for len(w.stack) > 0 {
		if err := w.pop(); err != nil && first == nil {
			first = err
		}
	}
	w.done = true
	return first
}

func (w *Walker) push(f frame) {
	w.stack = append(w.stack, f)
	w.logger.Debug("push", zap.String("path", f.path), zap.Int("depth", len(w.stack)))
}

func (w *Walker) pop() error {
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	err := f.dir.Close()
	w.logger.Debug("pop", zap.String("path", f.path), zap.Int("depth", len(w.stack)))
	return err
}
