//go:build !cgo

package external

// Available reports whether the libpostal bindings were compiled in.
func Available() bool { return false }

// ExtractComponents is a no-op without cgo.
func ExtractComponents(raw string) Components { return Components{} }
