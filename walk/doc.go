// Package walk provides lazy, pre-order traversal of a directory tree.
//
// The core type is Walker, a pull-based iterator over the filesystem: it
// holds a stack of open directory handles and yields one entry per call to
// Next, so arbitrarily large trees are enumerated in constant memory per
// level of depth. A directory is always yielded before its contents, and its
// contents before any of its later siblings. Sibling order is whatever the
// operating system returns; nothing is sorted or filtered.
//
//	w, err := walk.New("/var/log")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer w.Close()
//	for w.Next() {
//		if err := w.Err(); err != nil {
//			fmt.Fprintln(os.Stderr, err)
//			continue
//		}
//		fmt.Println(w.Entry().Path)
//	}
//
// A failed step does not end the walk: an unreadable subdirectory produces
// one error step and traversal continues with the rest of the tree. Only
// constructing the walker on an unusable root fails outright.
//
// For callers that prefer a callback, Walk adapts the iterator to a
// filepath.WalkDir-style function, honoring fs.SkipDir and fs.SkipAll:
//
//	err := walk.Walk(root, func(path string, d fs.DirEntry, err error) error {
//		if err != nil {
//			return nil // skip unreadable entries
//		}
//		fmt.Println(path)
//		return nil
//	})
//
// Watch Functionality
//
// Watch streams filesystem events for a tree; a Walker seeds the recursive
// watch list:
//
//	opts := walk.WatchOptions{
//		Recursive: true,
//		Events:    []walk.WatchEvent{walk.EventCreate, walk.EventModify},
//	}
//	err := walk.Watch(context.Background(), "/path/to/watch", opts, nil)
//
// Limitations: symbolic links are reported as themselves and never followed,
// and there is no cycle detection. A tree mutated during traversal yields
// best-effort results, matching the semantics of the underlying directory
// reads.
package walk
