// Package redis provides a line source backed by Redis lists, so the loop can
// be driven by a remote client.
package redis
