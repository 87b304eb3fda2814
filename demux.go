package hds

import (
	"context"
	"fmt"
	"strings"

	"github.com/neutrino-images/ni-ffmpeg/hoststream"
	"github.com/neutrino-images/ni-ffmpeg/logger"
	"github.com/neutrino-images/ni-ffmpeg/transport"
)

// SeekFlag mirrors the handful of seek flags the demuxer recognizes.
type SeekFlag int

// Recognized seek flags.
const (
	SeekFlagNone SeekFlag = 0
	// SeekFlagByte requests byte-offset seeking, which HDS cannot
	// support (fragments are opaque containers, not a byte-addressable
	// stream): Seek rejects it with ErrNotImplemented.
	SeekFlagByte SeekFlag = 1 << iota
)

// Probe reports a confidence score (0-100) that filename names an HDS
// manifest, based on its extension — the Go analogue of the source's
// probe callback, which normally also sniffs file content.
func Probe(filename string) int {
	if strings.HasSuffix(strings.ToLower(filename), ".f4m") {
		return 100
	}
	return 0
}

// Demuxer reads a manifest's media renditions and serves packets to the
// host by rotating between them fragment by fragment.
type Demuxer struct {
	manifestURL string
	manifest    *Manifest

	client transport.Client
	log    *logger.Logger

	quality string
	retries int

	bootstraps []*Bootstrap
	media      []*Media

	streams  []hoststream.Stream
	programs []hoststream.Program

	lastMediaIndex int
	pending        []hoststream.Packet

	cancel context.CancelFunc
	ctx    context.Context
}

// Open downloads and parses the manifest at url, resolves every
// bootstrap and media rendition it references, and starts one
// background download worker per rendition.
func Open(ctx context.Context, url string, opts ...Option) (*Demuxer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(cfg)
	}

	dctx, cancel := context.WithCancel(ctx)

	resp, err := cfg.client.Open(dctx, url, "")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: fetching manifest: %v", ErrNetworkFailure, err)
	}
	raw, err := resp.ReadAll()
	resp.Close()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: reading manifest: %v", ErrNetworkFailure, err)
	}

	manifest, err := ParseManifest(raw)
	if err != nil {
		cancel()
		return nil, err
	}

	bootstraps, err := resolveBootstraps(dctx, url, manifest.Bootstraps, cfg.client)
	if err != nil {
		cancel()
		return nil, err
	}

	d := &Demuxer{
		manifestURL:    url,
		manifest:       manifest,
		client:         cfg.client,
		log:            cfg.logger,
		quality:        cfg.quality,
		retries:        cfg.retries,
		bootstraps:     bootstraps,
		lastMediaIndex: -1,
		ctx:            dctx,
		cancel:         cancel,
	}

	media, err := resolveMedia(manifest.Media, bootstraps, &d.streams, &d.programs)
	if err != nil {
		cancel()
		return nil, err
	}
	if len(media) == 0 {
		cancel()
		return nil, ErrNoStream
	}
	d.media = media

	for _, m := range media {
		m.slot = newDownloadSlot()
		mctx, mcancel := context.WithCancel(dctx)
		m.cancel = mcancel
		startDownloadWorker(mctx, d.client, d.log, d.retries, m.slot)
	}

	// Every registered stream starts enabled; the host can call
	// Streams() and set Discard on the ones it does not want.
	for i := range d.streams {
		d.streams[i].Discard = hoststream.DiscardNone
	}

	return d, nil
}

// Streams returns every host stream this demuxer has registered.
func (d *Demuxer) Streams() []hoststream.Stream { return d.streams }

// Programs returns every rendition's program grouping.
func (d *Demuxer) Programs() []hoststream.Program { return d.programs }

// ReadPacket returns the next decoded packet, rotating across
// renditions round-robin the way the source's av_read_frame does
// across AVFormatContext's inputs.
func (d *Demuxer) ReadPacket(ctx context.Context) (hoststream.Packet, error) {
	if len(d.pending) > 0 {
		pkt := d.pending[0]
		d.pending = d.pending[1:]
		return pkt, nil
	}

	for attempts := 0; attempts < len(d.media); attempts++ {
		d.lastMediaIndex = (d.lastMediaIndex + 1) % len(d.media)
		m := d.media[d.lastMediaIndex]

		if !d.mediaEnabled(m) {
			continue
		}

		pkt, ok, err := d.readFragmentFor(ctx, m)
		if err != nil {
			return hoststream.Packet{}, err
		}
		if ok {
			return pkt, nil
		}
	}

	return hoststream.Packet{}, ErrEndOfStream
}

// mediaEnabled reports whether m has at least one stream the host
// hasn't marked DiscardAll. Per §4.7, a media whose streams are all
// discarded is skipped by the read-packet rotation entirely rather
// than spending a fragment fetch on data nothing will consume.
func (d *Demuxer) mediaEnabled(m *Media) bool {
	if m.VideoStreamIndex >= 0 && d.streams[m.VideoStreamIndex].Enabled() {
		return true
	}
	if m.AudioStreamIndex >= 0 && d.streams[m.AudioStreamIndex].Enabled() {
		return true
	}
	return false
}

// readFragmentFor fetches and decodes the next fragment of m, queuing
// every sample but the first as pending and returning the first.
func (d *Demuxer) readFragmentFor(ctx context.Context, m *Media) (hoststream.Packet, bool, error) {
	isLive := d.manifest.IsLive()

	// A live media with nothing read yet is anchored at the fragment
	// holding the live head; NbFragmentsRead is that fragment's 0-based
	// index from then on.
	if isLive && m.NbFragmentsRead == 0 {
		idx, err := fragmentForTimestamp(m.Bootstrap, d.quality, m.Bootstrap.Box.CurrentMediaTime)
		if err != nil {
			return hoststream.Packet{}, false, err
		}
		if idx > 0 {
			m.NbFragmentsRead = idx - 1
		}
	}
	fragmentIndex := m.NbFragmentsRead

	segment, fragment, err := segmentFragmentForIndex(m.Bootstrap, d.quality, isLive, m.NbFragmentsRead, fragmentIndex)
	if err != nil {
		if isLive {
			return hoststream.Packet{}, false, nil
		}
		return hoststream.Packet{}, false, ErrEndOfStream
	}

	base, _ := baseURL(d.manifestURL)
	url := fragmentURL(base, m.URL, segment, fragment, d.manifestURL)

	raw, err := requestFragment(ctx, m.slot, url, "")
	if err != nil {
		return hoststream.Packet{}, false, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}

	box, err := ParseF4FBox(raw)
	if err != nil {
		return hoststream.Packet{}, false, err
	}

	samples, err := decodeFLVTags(box.Mdat, &m.Metadata)
	if err != nil {
		return hoststream.Packet{}, false, err
	}

	m.NbFragmentsRead++

	var pkts []hoststream.Packet
	for _, s := range samples {
		idx := m.AudioStreamIndex
		if s.isVideo {
			idx = m.VideoStreamIndex
		}
		if idx < 0 {
			continue
		}
		pkts = append(pkts, hoststream.Packet{
			StreamIndex: idx,
			Data:        s.data,
			DTS:         int64(s.timestamp),
			PTS:         int64(s.timestamp),
		})
	}

	if len(pkts) == 0 {
		return hoststream.Packet{}, false, nil
	}

	first := pkts[0]
	d.pending = append(d.pending, pkts[1:]...)
	return first, true, nil
}

// Seek repositions every rendition to the fragment containing
// timestamp. SeekFlagByte is rejected since fragments are not
// byte-addressable. On a live manifest, seeking resets every
// rendition's read cursor so the next ReadPacket re-anchors to the
// live edge.
func (d *Demuxer) Seek(timestamp int64, flags SeekFlag) error {
	if flags&SeekFlagByte != 0 {
		return ErrNotImplemented
	}
	if d.manifest.DurationTimeBase() > 0 && timestamp > d.manifest.DurationTimeBase() {
		return fmt.Errorf("%w: seek target past end of stream", ErrIO)
	}

	d.pending = nil

	if d.manifest.IsLive() {
		for _, m := range d.media {
			m.NbFragmentsRead = 0
		}
		return nil
	}

	for _, m := range d.media {
		idx, err := fragmentForTimestamp(m.Bootstrap, d.quality, uint64(timestamp))
		if err != nil {
			return err
		}
		if idx > 0 {
			m.NbFragmentsRead = idx - 1
		} else {
			m.NbFragmentsRead = 0
		}
	}
	return nil
}

// Close stops every rendition's download worker and releases resources.
func (d *Demuxer) Close() error {
	for _, m := range d.media {
		if m.cancel != nil {
			m.cancel()
		}
	}
	d.cancel()
	return nil
}
