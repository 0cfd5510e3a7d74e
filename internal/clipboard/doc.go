// Package clipboard captures block states of a region relative to a capture origin.
//
// A [Clipboard] is backed either by a map ([InMemory]) or by a temporary SQLite file ([Buffered])
// that bounds process memory for large captures. The backend is chosen when the clipboard is
// built and never changes. Every clipboard must be closed; [With] closes it on all exit paths.
package clipboard
