// Adobe Media Manifest (F4M) parser.
//
// @see https://wwwimages.adobe.com/www.adobe.com/content/dam/Adobe/en/devnet/hds/pdfs/adobe-media-manifest-specification.pdf
package hds

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-webdl/encodetype"
)

// Manifest is the root of an F4M document: identifying metadata, the
// set of bootstrap boxes it references, and the set of media renditions
// available for playback.
//
// Attribute/text absence is tolerated throughout: missing fields are
// simply left at their zero value, mirroring the source's "fixed
// buffer, silent default" behavior for optional manifest fields.
type Manifest struct {
	XMLName xml.Name `xml:"manifest"`

	// ID is the manifest's id element, if present.
	ID string `xml:"id"`

	// StreamType is "live" or "recorded".
	StreamType string `xml:"streamType"`

	// DurationSeconds is the manifest's duration element, as decimal
	// text. Parsed tolerantly by DurationTimeBase: a malformed value
	// behaves as zero rather than failing the whole manifest, matching
	// the source's strtod-based parse.
	DurationSeconds string `xml:"duration"`

	// Bootstraps lists the manifest's bootstrapInfo children, in
	// document order.
	Bootstraps []BootstrapRef `xml:"bootstrapInfo"`

	// Media lists the manifest's media children, in document order.
	Media []MediaRef `xml:"media"`
}

// IsLive reports whether the manifest declares a live presentation.
func (m *Manifest) IsLive() bool {
	return strings.EqualFold(m.StreamType, "live")
}

// DurationTimeBase returns the manifest duration in the host's time
// base (microseconds), the Go analogue of AV_TIME_BASE.
func (m *Manifest) DurationTimeBase() int64 {
	return int64(parseDurationSeconds(m.DurationSeconds) * 1e6)
}

// BootstrapRef is one <bootstrapInfo> element: either an inline,
// base64-encoded bootstrap box, or a pointer to one that must be
// downloaded separately.
type BootstrapRef struct {
	ID      string `xml:"id,attr"`
	URL     string `xml:"url,attr"`
	Profile string `xml:"profile,attr"`

	// Inline holds the base64-decoded bootstrap box, if the element
	// carried text content. encodetype.Base64Bytes decodes it as part
	// of xml.Unmarshal, the way the source decodes it as a second,
	// explicit step.
	Inline encodetype.Base64Bytes `xml:",chardata"`
}

// MediaRef is one <media> element: a bitrate rendition pointing at a
// relative fragment URL and, by id, the bootstrap it uses.
type MediaRef struct {
	Bitrate         int    `xml:"bitrate,attr"`
	URL             string `xml:"url,attr"`
	BootstrapInfoID string `xml:"bootstrapInfoId,attr"`

	// Metadata holds the base64-decoded AMF0 onMetaData payload from
	// a nested <metadata> child, if present.
	Metadata mediaMetadata `xml:"metadata"`
}

// InlineMetadata returns the media's decoded AMF metadata blob, or nil
// if the media carried no <metadata> child.
func (m *MediaRef) InlineMetadata() []byte {
	return m.Metadata.Data
}

// mediaMetadata unwraps the <metadata> child so MediaRef.Metadata can
// be addressed as a single nested element, per §4.2.
type mediaMetadata struct {
	Data encodetype.Base64Bytes `xml:",chardata"`
}

// ParseManifest decodes raw F4M XML bytes into a Manifest. The root
// element must be named "manifest"; anything else is ErrInvalidManifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if m.XMLName.Local != "manifest" {
		return nil, fmt.Errorf("%w: root element is %q, not manifest", ErrInvalidManifest, m.XMLName.Local)
	}
	return &m, nil
}

// parseDurationSeconds mirrors f4m_parse_manifest_node's strtod call:
// a malformed duration parses as zero rather than failing the manifest.
func parseDurationSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
