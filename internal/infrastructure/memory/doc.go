// Package memory implements the repository interfaces with maps guarded by
// a mutex. It backs unit tests and the end-to-end storefront test; values are
// copied on the way in and out so callers never share state with the store.
package memory
