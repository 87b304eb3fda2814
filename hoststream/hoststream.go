// Package hoststream stands in for the host multimedia framework's
// stream/packet/program types — an external collaborator the demuxer
// only ever writes into, never owns the lifecycle of.
package hoststream

// Discard selects how much of a Stream's data the host wants delivered.
// A freshly created Stream defaults to DiscardAll, meaning "no packets
// routed here unless enabled" (§4.5).
type Discard int

// Discard policies a host may set on a Stream.
const (
	DiscardAll Discard = iota
	DiscardNone
)

// MediaType identifies whether a Stream carries audio or video.
type MediaType int

// Recognized media types.
const (
	MediaTypeVideo MediaType = iota
	MediaTypeAudio
)

// TimeBase is a rational time base, matching AVStream's time_base.
type TimeBase struct {
	Num, Den int32
}

// Stream is one elementary stream the demuxer has registered with the
// host: either the video or the audio half of a Media rendition.
type Stream struct {
	Index     int
	ID        int
	Type      MediaType
	TimeBase  TimeBase
	Discard   Discard
	Width     int
	Height    int
	BitRate   int
	SampleRate int
	Channels  int
	CodecTag  string
}

// Enabled reports whether the host wants packets from this stream.
func (s *Stream) Enabled() bool {
	return s.Discard != DiscardAll
}

// Program groups a Media rendition's streams under a single name, the
// way the source's create_pmt groups each bitrate into its own
// AVProgram.
type Program struct {
	ID            int
	Name          string
	StreamIndexes []int
}

// Packet is one elementary sample ready for delivery to the host.
type Packet struct {
	StreamIndex int
	Data        []byte
	DTS         int64
	PTS         int64
}
