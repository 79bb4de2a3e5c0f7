// Package normalize canonicalizes US postal addresses per USPS Pub 28
// and RESO guidelines: character and phrase cleanup, directional and
// street-type abbreviation, secondary-line separation, and assembly
// into a fixed five-field uppercase record.
//
// The pipeline is lexical only. It never checks that an address
// exists or is deliverable, and it never fails on well-formed string
// or record input: unknown tokens pass through, missing fields come
// back empty, and ambiguous splits fall back to "no secondary line".
package normalize

// Options adjusts a single normalization call. The zero value uses
// the default key names, no post-processing hooks, and the shared
// process-wide tables.
type Options struct {
	// KeyMap renames the canonical fields for record-shaped input.
	// When set it must cover all five fields.
	KeyMap *KeyMap
	// LineFuncs run in order on the primary/secondary pair after the
	// built-in split.
	LineFuncs []LineFunc
	// Tables overrides the shared table set, mainly for tests and
	// callers that manage override documents themselves.
	Tables *Tables
}

// Normalize canonicalizes a single address. Input is either a string
// or a key-value record (map[string]string / map[string]any) holding
// the five canonical fields, renamed via Options.KeyMap if needed.
// City, state and postal code supplied on a record are carried
// through untouched by the line stages.
func Normalize(input any, opts *Options) (AddressRecord, error) {
	if opts == nil {
		opts = &Options{}
	}

	tables := opts.Tables
	if tables == nil {
		var err error
		if tables, err = Shared(); err != nil {
			return AddressRecord{}, err
		}
	}

	state, err := adapt(input, opts.KeyMap)
	if err != nil {
		return AddressRecord{}, err
	}

	text := Clean(state.line, tables)
	text = Abbreviate(text, tables)
	line1, line2 := Split(text, tables)

	return assemble(line1, line2, state.known, tables, opts.LineFuncs), nil
}
