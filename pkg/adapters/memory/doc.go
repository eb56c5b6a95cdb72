// Package memory provides an in-memory line source for tests and for embedding
// the loop behind another transport.
package memory
