// F4F box reader: the ISO-BMFF-style container used by HDS for
// bootstrap info ("abst") and fragment payloads ("mdat").
//
// Box headers follow the same size+fourcc shape as any ISO-BMFF file
// (see github.com/tetsuo/isobmff's BoxType for the type-constant
// convention this mirrors); only the handful of box types HDS actually
// uses are decoded, everything else is skipped.
package hds

import (
	"encoding/binary"
	"fmt"
)

// boxType is a 4-byte ISO-BMFF box type, e.g. "abst" or "mdat".
type boxType [4]byte

func (t boxType) String() string { return string(t[:]) }

var (
	typeABST = boxType{'a', 'b', 's', 't'}
	typeASRT = boxType{'a', 's', 'r', 't'}
	typeAFRT = boxType{'a', 'f', 'r', 't'}
	typeMDAT = boxType{'m', 'd', 'a', 't'}
)

// SegmentRunEntry is one entry of a SegmentRunTable: a span of
// fragments-per-segment starting at first_segment.
type SegmentRunEntry struct {
	FirstSegment       uint32
	FragmentsPerSegment uint32
}

// SegmentRunTable is one "asrt" box: a quality-filtered list of
// SegmentRunEntry.
type SegmentRunTable struct {
	QualityEntries []string
	Entries        []SegmentRunEntry
}

// FragmentRunEntry is one entry of a FragmentRunTable.
type FragmentRunEntry struct {
	FirstFragment         uint32
	FirstFragmentTimeStamp uint64
	FragmentDuration      uint32
}

// FragmentRunTable is one "afrt" box: a quality-filtered list of
// FragmentRunEntry.
type FragmentRunTable struct {
	QualityEntries []string
	Entries        []FragmentRunEntry
}

// BootstrapBox is the parsed "abst" box: live head timestamp plus the
// segment/fragment run tables the fragment locator scans.
type BootstrapBox struct {
	CurrentMediaTime uint64

	SegmentRunTables  []SegmentRunTable
	FragmentRunTables []FragmentRunTable
}

// F4FBox is the top-level parse result of a bootstrap or fragment
// payload: the bootstrap info box (if this was a bootstrap) and the
// raw mdat payload (if this was a fragment).
type F4FBox struct {
	Abst BootstrapBox
	Mdat []byte
}

// ParseF4FBox walks the top-level boxes in buf, decoding "abst" and
// "mdat" and skipping everything else (vendor boxes, "free", etc. are
// not an error).
func ParseF4FBox(buf []byte) (*F4FBox, error) {
	var box F4FBox
	pos := 0
	for pos < len(buf) {
		size, typ, headerLen, err := readBoxHeader(buf[pos:])
		if err != nil {
			return nil, err
		}
		if size < uint64(headerLen) || pos+int(size) > len(buf) {
			return nil, fmt.Errorf("%w: box %s size %d exceeds remaining buffer", ErrTruncated, typ, size)
		}
		body := buf[pos+headerLen : pos+int(size)]

		switch typ {
		case typeABST:
			abst, err := parseAbstBox(body)
			if err != nil {
				return nil, err
			}
			box.Abst = *abst
		case typeMDAT:
			box.Mdat = body
		}

		pos += int(size)
	}
	return &box, nil
}

// readBoxHeader reads a standard ISO-BMFF box header: a 32-bit size
// (or 64-bit "largesize" when size==1) followed by a 4-byte type.
func readBoxHeader(buf []byte) (size uint64, typ boxType, headerLen int, err error) {
	if len(buf) < 8 {
		return 0, boxType{}, 0, fmt.Errorf("%w: box header", ErrTruncated)
	}
	size32 := binary.BigEndian.Uint32(buf[0:4])
	copy(typ[:], buf[4:8])
	if size32 != 1 {
		return uint64(size32), typ, 8, nil
	}
	if len(buf) < 16 {
		return 0, boxType{}, 0, fmt.Errorf("%w: large box header", ErrTruncated)
	}
	return binary.BigEndian.Uint64(buf[8:16]), typ, 16, nil
}

// abstReader is a simple big-endian cursor over a box body, used by
// parseAbstBox/parseAsrtBox/parseAfrtBox.
type abstReader struct {
	buf []byte
	pos int
}

func (r *abstReader) u8() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("%w: abst u8", ErrTruncated)
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *abstReader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("%w: abst u32", ErrTruncated)
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *abstReader) u64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("%w: abst u64", ErrTruncated)
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *abstReader) cstring() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) && r.buf[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.buf) {
		return "", fmt.Errorf("%w: unterminated string", ErrTruncated)
	}
	s := string(r.buf[start:r.pos])
	r.pos++ // skip NUL
	return s, nil
}

func (r *abstReader) skip(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("%w: abst skip", ErrTruncated)
	}
	r.pos += n
	return nil
}

// parseAbstBox decodes the abst full-box body: version/flags, a
// bootstrap info version, an update/live flag byte, timescale,
// current_media_time/smpte_time_code_offset, a movie identifier, N
// server base URLs, N quality entries (the bootstrap's own quality
// list, unused by this package beyond skipping it), a DRM data string,
// a metadata string, and finally the segment-run-table and
// fragment-run-table children.
func parseAbstBox(body []byte) (*BootstrapBox, error) {
	r := &abstReader{buf: body}

	if err := r.skip(4); err != nil { // version(1) + flags(3)
		return nil, err
	}
	if err := r.skip(4); err != nil { // bootstrapInfoVersion
		return nil, err
	}
	flags, err := r.u8()
	if err != nil {
		return nil, err
	}
	_ = flags // profile/live/update bits: not consumed by this core
	if err := r.skip(4); err != nil { // timescale
		return nil, err
	}
	currentMediaTime, err := r.u64()
	if err != nil {
		return nil, err
	}
	if err := r.skip(8); err != nil { // smpteTimeCodeOffset
		return nil, err
	}
	if _, err := r.cstring(); err != nil { // movieIdentifier
		return nil, err
	}
	nServerURLs, err := r.u8()
	if err != nil {
		return nil, err
	}
	for i := byte(0); i < nServerURLs; i++ {
		if _, err := r.cstring(); err != nil {
			return nil, err
		}
	}
	nQuality, err := r.u8()
	if err != nil {
		return nil, err
	}
	for i := byte(0); i < nQuality; i++ {
		if _, err := r.cstring(); err != nil {
			return nil, err
		}
	}
	if _, err := r.cstring(); err != nil { // drmData
		return nil, err
	}
	if _, err := r.cstring(); err != nil { // metaData
		return nil, err
	}

	abst := BootstrapBox{CurrentMediaTime: currentMediaTime}

	nASRT, err := r.u8()
	if err != nil {
		return nil, err
	}
	for i := byte(0); i < nASRT; i++ {
		size, typ, headerLen, err := readBoxHeader(r.buf[r.pos:])
		if err != nil {
			return nil, err
		}
		childBody := r.buf[r.pos+headerLen : r.pos+int(size)]
		if typ == typeASRT {
			t, err := parseAsrtBox(childBody)
			if err != nil {
				return nil, err
			}
			abst.SegmentRunTables = append(abst.SegmentRunTables, *t)
		}
		r.pos += int(size)
	}

	nAFRT, err := r.u8()
	if err != nil {
		return nil, err
	}
	for i := byte(0); i < nAFRT; i++ {
		size, typ, headerLen, err := readBoxHeader(r.buf[r.pos:])
		if err != nil {
			return nil, err
		}
		childBody := r.buf[r.pos+headerLen : r.pos+int(size)]
		if typ == typeAFRT {
			t, err := parseAfrtBox(childBody)
			if err != nil {
				return nil, err
			}
			abst.FragmentRunTables = append(abst.FragmentRunTables, *t)
		}
		r.pos += int(size)
	}

	return &abst, nil
}

func parseAsrtBox(body []byte) (*SegmentRunTable, error) {
	r := &abstReader{buf: body}
	if err := r.skip(4); err != nil { // version + flags
		return nil, err
	}
	nQuality, err := r.u8()
	if err != nil {
		return nil, err
	}
	t := &SegmentRunTable{}
	for i := byte(0); i < nQuality; i++ {
		q, err := r.cstring()
		if err != nil {
			return nil, err
		}
		t.QualityEntries = append(t.QualityEntries, q)
	}
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		first, err := r.u32()
		if err != nil {
			return nil, err
		}
		perSeg, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.Entries = append(t.Entries, SegmentRunEntry{FirstSegment: first, FragmentsPerSegment: perSeg})
	}
	return t, nil
}

func parseAfrtBox(body []byte) (*FragmentRunTable, error) {
	r := &abstReader{buf: body}
	if err := r.skip(4); err != nil { // version + flags
		return nil, err
	}
	if err := r.skip(4); err != nil { // timescale
		return nil, err
	}
	nQuality, err := r.u8()
	if err != nil {
		return nil, err
	}
	t := &FragmentRunTable{}
	for i := byte(0); i < nQuality; i++ {
		q, err := r.cstring()
		if err != nil {
			return nil, err
		}
		t.QualityEntries = append(t.QualityEntries, q)
	}
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		first, err := r.u32()
		if err != nil {
			return nil, err
		}
		ts, err := r.u64()
		if err != nil {
			return nil, err
		}
		dur, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.Entries = append(t.Entries, FragmentRunEntry{
			FirstFragment:          first,
			FirstFragmentTimeStamp: ts,
			FragmentDuration:       dur,
		})
	}
	return t, nil
}
