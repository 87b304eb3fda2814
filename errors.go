package hds

import "errors"

// Sentinel errors returned by this package. Callers should use errors.Is,
// since most call sites wrap these with additional context via fmt.Errorf's
// %w verb.
var (
	// ErrTruncated means a primitive (AMF value, box header, fragment
	// body) ended before a structure that was being decoded from it
	// was complete.
	ErrTruncated = errors.New("hds: truncated input")

	// ErrMalformedMetadata means an AMF0 value's type byte did not
	// match what was expected at that position, or the onMetaData
	// sentinel string was missing or did not match.
	ErrMalformedMetadata = errors.New("hds: malformed AMF metadata")

	// ErrInvalidManifest means the F4M XML's root element was not
	// named "manifest", or a mandatory piece of manifest text was
	// missing.
	ErrInvalidManifest = errors.New("hds: invalid F4M manifest")

	// ErrBootstrapIncomplete means the fragment run tables were
	// consumed without finding an entry that covers the requested
	// timestamp.
	ErrBootstrapIncomplete = errors.New("hds: bootstrap tables do not cover requested fragment")

	// ErrNetworkFailure means a manifest, bootstrap, or fragment
	// download failed (for fragments, after every attempt failed). An
	// empty response body is not an error by itself.
	ErrNetworkFailure = errors.New("hds: network failure")

	// ErrEndOfStream means a fragment skip ran past the end of the
	// run tables for a non-live stream.
	ErrEndOfStream = errors.New("hds: end of stream")

	// ErrNotImplemented means a byte-offset seek was requested.
	ErrNotImplemented = errors.New("hds: not implemented")

	// ErrUnknownCodec means a codec identifier (AMF or manifest) did
	// not map to a codec this package recognizes.
	ErrUnknownCodec = errors.New("hds: codec not supported")

	// ErrNoStream means the manifest lists no media renditions, so
	// Open has nothing to read.
	ErrNoStream = errors.New("hds: no valid stream")

	// ErrIO means an operation was rejected for a reason the source
	// classifies as a plain I/O error rather than a parse failure, e.g.
	// a seek target past the end of the stream.
	ErrIO = errors.New("hds: i/o error")
)
