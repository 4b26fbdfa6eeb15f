// Package filesystem implements a layer source over a local directory of
// <id>.tl files.
//
// A layer is dated by its file's modification time. The source can watch
// the directory with fsnotify and report new or rewritten layer files as
// they appear, so ingestion runs without waiting for the next tick.
package filesystem
