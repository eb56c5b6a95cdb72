// Package stdio provides a line source over plain readers and writers, for
// pipes, scripts and terminals without line editing.
package stdio
