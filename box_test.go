package hds

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func cstr(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

// buildAbstBody assembles a minimal abst full-box body: one wildcard
// asrt with a single entry and one wildcard afrt with two entries.
func buildAbstBody(t *testing.T, currentMediaTime uint64) []byte {
	t.Helper()
	var buf bytes.Buffer

	binary.Write(&buf, binary.BigEndian, uint32(0)) // version+flags
	binary.Write(&buf, binary.BigEndian, uint32(1)) // bootstrapInfoVersion
	buf.WriteByte(0)                                // profile/live/update flags
	binary.Write(&buf, binary.BigEndian, uint32(1000)) // timescale
	binary.Write(&buf, binary.BigEndian, currentMediaTime)
	binary.Write(&buf, binary.BigEndian, uint64(0)) // smpteTimeCodeOffset
	cstr(&buf, "")                                  // movieIdentifier
	buf.WriteByte(0)                                // nServerURLs
	buf.WriteByte(0)                                // nQuality (bootstrap-level)
	cstr(&buf, "")                                  // drmData
	cstr(&buf, "")                                  // metaData

	var asrt bytes.Buffer
	binary.Write(&asrt, binary.BigEndian, uint32(0)) // version+flags
	asrt.WriteByte(0)                                // nQuality
	binary.Write(&asrt, binary.BigEndian, uint32(1)) // entry count
	binary.Write(&asrt, binary.BigEndian, uint32(1)) // first_segment
	binary.Write(&asrt, binary.BigEndian, uint32(3)) // fragments_per_segment

	buf.WriteByte(1) // nASRT
	binary.Write(&buf, binary.BigEndian, uint32(8+asrt.Len()))
	buf.WriteString("asrt")
	buf.Write(asrt.Bytes())

	var afrt bytes.Buffer
	binary.Write(&afrt, binary.BigEndian, uint32(0))    // version+flags
	binary.Write(&afrt, binary.BigEndian, uint32(1000)) // timescale
	afrt.WriteByte(0)                                   // nQuality
	binary.Write(&afrt, binary.BigEndian, uint32(2))    // entry count
	binary.Write(&afrt, binary.BigEndian, uint32(1))    // first_fragment
	binary.Write(&afrt, binary.BigEndian, uint64(0))    // first_fragment_time_stamp
	binary.Write(&afrt, binary.BigEndian, uint32(10000)) // fragment_duration
	binary.Write(&afrt, binary.BigEndian, uint32(2))     // first_fragment
	binary.Write(&afrt, binary.BigEndian, uint64(10000)) // first_fragment_time_stamp
	binary.Write(&afrt, binary.BigEndian, uint32(10000)) // fragment_duration

	buf.WriteByte(1) // nAFRT
	binary.Write(&buf, binary.BigEndian, uint32(8+afrt.Len()))
	buf.WriteString("afrt")
	buf.Write(afrt.Bytes())

	return buf.Bytes()
}

func wrapBox(typ string, body []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(8+len(body)))
	buf.WriteString(typ)
	buf.Write(body)
	return buf.Bytes()
}

func TestParseF4FBoxDecodesAbst(t *testing.T) {
	abstBody := buildAbstBody(t, 25000)
	raw := wrapBox("abst", abstBody)

	box, err := ParseF4FBox(raw)
	require.NoError(t, err)
	require.EqualValues(t, 25000, box.Abst.CurrentMediaTime)
	require.Len(t, box.Abst.SegmentRunTables, 1)
	require.Len(t, box.Abst.FragmentRunTables, 1)
	require.Equal(t, uint32(1), box.Abst.SegmentRunTables[0].Entries[0].FirstSegment)
	require.Equal(t, uint32(3), box.Abst.SegmentRunTables[0].Entries[0].FragmentsPerSegment)
}

func TestParseF4FBoxDecodesMdatAndSkipsUnknown(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(wrapBox("free", []byte("ignored")))
	raw.Write(wrapBox("mdat", []byte("payload-bytes")))

	box, err := ParseF4FBox(raw.Bytes())
	require.NoError(t, err)
	require.Equal(t, []byte("payload-bytes"), box.Mdat)
}

func TestParseF4FBoxTruncated(t *testing.T) {
	_, err := ParseF4FBox([]byte{0, 0, 0, 20, 'm', 'd', 'a', 't'})
	require.ErrorIs(t, err, ErrTruncated)
}
