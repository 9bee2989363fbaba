// Package lvmerr holds the discriminable error taxonomy callers switch on
// when a physical volume fails to open or a logical volume fails to read.
// Every error defined here supports errors.Is/errors.As.
package lvmerr

import "fmt"

// Sentinel errors. Wrap with fmt.Errorf("...: %w", Err*) at the call site so
// context survives while errors.Is still matches.
var (
	// Io wraps any underlying I/O failure (short read, seek past end, etc).
	Io = fmt.Errorf("lvm: io error")

	// WrongMagic is returned when a label header (signature or type) or a
	// metadata area header does not carry the magic value the format
	// requires at that offset.
	WrongMagic = fmt.Errorf("lvm: wrong magic value")

	// Serde is returned when the typed-map deserializer cannot project the
	// parsed metadata tree onto the expected domain shape (missing field,
	// wrong value kind, duplicate key in a keyed map).
	Serde = fmt.Errorf("lvm: metadata deserialization error")

	// MultipleVGsError is returned when a metadata document describes more
	// than one volume group; a PV's metadata document carries exactly one.
	MultipleVGsError = fmt.Errorf("lvm: metadata document describes more than one volume group")

	// PVDoesntContainItself is returned when the binary PV UUID cannot be
	// found among the parsed VolumeGroup's physical_volumes entries.
	PVDoesntContainItself = fmt.Errorf("lvm: physical volume UUID not present in its own volume group metadata")

	// MissingMetadata is returned when a metadata area's raw_locations
	// descriptor array is empty or every location has zero size.
	MissingMetadata = fmt.Errorf("lvm: metadata area has no usable raw location")

	// ForeignPV is returned by an LVStream read/seek when a segment resolves
	// to a physical volume other than the one backing the stream's reader.
	ForeignPV = fmt.Errorf("lvm: segment resolves to a foreign physical volume")
)

// ParseError reports a binary header decode failure or a metadata text
// syntax error at a specific byte offset.
type ParseError struct {
	Where  string // what was being parsed, e.g. "section body", "array value"
	AtByte int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lvm: parse error in %s at byte %d: %v", e.Where, e.AtByte, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError constructs a ParseError wrapping err with its location.
func NewParseError(where string, atByte int64, err error) *ParseError {
	return &ParseError{Where: where, AtByte: atByte, Err: err}
}
