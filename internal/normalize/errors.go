package normalize

import "fmt"

// ConfigurationError indicates a malformed or unrecognized table
// override document. The built-in defaults are left untouched when
// one is returned.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("table configuration invalid: %s", e.Reason)
}

// InputError indicates input that is neither a string nor a
// key-value record, or a caller key map that does not cover all five
// canonical fields. It is never returned for merely malformed
// address content.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("address input invalid: %s", e.Reason)
}
