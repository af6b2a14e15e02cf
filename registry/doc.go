// Package registry contains interfaces and default implementations for the
// custom role registry and membership store. Default structs compose
// go-repository-bun repositories but can be replaced by the host application
// via dependency injection. Enable the go-repository-cache decorator with
// WithCache when authority resolution should avoid per-request queries.
package registry
