package hds

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neutrino-images/ni-ffmpeg/hoststream"
	"github.com/neutrino-images/ni-ffmpeg/transport"
)

// Bootstrap is a resolved BootstrapRef: its id plus the decoded segment
// and fragment run tables fragment lookups scan.
type Bootstrap struct {
	ID  string
	Box BootstrapBox
}

// Media is one resolved rendition of the manifest: its bitrate, URL,
// bound bootstrap, decoded metadata, registered host streams, and the
// live download worker that fetches its fragments.
type Media struct {
	Bitrate int
	URL     string

	Bootstrap *Bootstrap
	Metadata  Metadata

	VideoStreamIndex int // -1 if none
	AudioStreamIndex int // -1 if none

	// NbFragmentsRead is the 0-based index of the next fragment to
	// fetch: it advances by one per fragment read, Seek repositions it
	// (to 0 on a live manifest), and on a live manifest a zero value is
	// re-anchored at the live head before the next read.
	NbFragmentsRead uint32

	slot   *downloadSlot
	cancel context.CancelFunc
}

// resolveBootstraps downloads (or decodes inline) every BootstrapRef in
// the manifest, returning them indexed in document order.
func resolveBootstraps(ctx context.Context, manifestURL string, refs []BootstrapRef, client transport.Client) ([]*Bootstrap, error) {
	base, _ := baseURL(manifestURL)
	out := make([]*Bootstrap, len(refs))

	for i, ref := range refs {
		var raw []byte
		if len(ref.Inline) > 0 {
			raw = []byte(ref.Inline)
		} else {
			if ref.URL == "" {
				return nil, fmt.Errorf("%w: bootstrapInfo %q has neither inline data nor url", ErrInvalidManifest, ref.ID)
			}
			url := bootstrapURL(base, ref.URL, manifestURL)
			resp, err := client.Open(ctx, url, "")
			if err != nil {
				return nil, fmt.Errorf("%w: downloading bootstrap %q: %v", ErrNetworkFailure, ref.ID, err)
			}
			raw, err = resp.ReadAll()
			resp.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: reading bootstrap %q: %v", ErrNetworkFailure, ref.ID, err)
			}
		}

		box, err := ParseF4FBox(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing bootstrap %q: %w", ref.ID, err)
		}
		out[i] = &Bootstrap{ID: ref.ID, Box: box.Abst}
	}
	return out, nil
}

// bootstrapForMedia selects a media's bootstrap by case-insensitive id
// match, falling back to bootstraps[0] when no id matches or the media
// names no bootstrap at all. This is the corrected form of the source's
// default-assignment loop (§9): the fallback is an explicit "no match
// found" branch, not an inverted comparison that assigns on every
// non-match.
func bootstrapForMedia(bootstrapInfoID string, bootstraps []*Bootstrap) (*Bootstrap, error) {
	if len(bootstraps) == 0 {
		return nil, fmt.Errorf("%w: manifest has no bootstrapInfo", ErrInvalidManifest)
	}
	if bootstrapInfoID != "" {
		for _, b := range bootstraps {
			if strings.EqualFold(b.ID, bootstrapInfoID) {
				return b, nil
			}
		}
	}
	return bootstraps[0], nil
}

// resolveMedia builds the Media records for every <media> element,
// binds each to its bootstrap, decodes its inline metadata, and
// allocates host streams/a program for it.
func resolveMedia(refs []MediaRef, bootstraps []*Bootstrap, streams *[]hoststream.Stream, programs *[]hoststream.Program) ([]*Media, error) {
	out := make([]*Media, 0, len(refs))

	for _, ref := range refs {
		bs, err := bootstrapForMedia(ref.BootstrapInfoID, bootstraps)
		if err != nil {
			return nil, err
		}

		// A malformed metadata blob does not fail the media: fields
		// decoded before the error are kept and the rest stay at their
		// defaults.
		md, _ := ParseMetadata(ref.InlineMetadata())

		m := &Media{
			Bitrate:          ref.Bitrate,
			URL:              ref.URL,
			Bootstrap:        bs,
			Metadata:         md,
			VideoStreamIndex: -1,
			AudioStreamIndex: -1,
		}

		var streamIdx []int
		base := len(*streams)

		if md.VideoCodec != VideoCodecNone {
			idx := base
			*streams = append(*streams, hoststream.Stream{
				Index:    idx,
				ID:       2 * len(out),
				Type:     hoststream.MediaTypeVideo,
				TimeBase: hoststream.TimeBase{Num: 1, Den: 1000},
				Discard:  hoststream.DiscardAll,
				Width:    md.Width,
				Height:   md.Height,
				BitRate:  md.VideoDataRate * 1000,
				CodecTag: "avc1",
			})
			m.VideoStreamIndex = idx
			streamIdx = append(streamIdx, idx)
		}
		if md.AudioCodec != AudioCodecNone {
			idx := len(*streams)
			*streams = append(*streams, hoststream.Stream{
				Index:      idx,
				ID:         2*len(out) + 1,
				Type:       hoststream.MediaTypeAudio,
				TimeBase:   hoststream.TimeBase{Num: 1, Den: 1000},
				Discard:    hoststream.DiscardAll,
				SampleRate: md.AudioSampleRate,
				Channels:   md.AudioChannels,
				BitRate:    md.AudioDataRate * 1000,
				CodecTag:   audioCodecTag(md.AudioCodec),
			})
			m.AudioStreamIndex = idx
			streamIdx = append(streamIdx, idx)
		}

		*programs = append(*programs, hoststream.Program{
			ID:            len(*programs),
			Name:          fmt.Sprintf("%d kbit/s", ref.Bitrate),
			StreamIndexes: streamIdx,
		})

		out = append(out, m)
	}

	return out, nil
}

func audioCodecTag(c AudioCodec) string {
	switch c {
	case AudioCodecAAC:
		return "mp4a"
	case AudioCodecMP3:
		return ".mp3"
	default:
		return ""
	}
}

// downloadSlot is the synchronization point between a Media's background
// download worker and the demuxer goroutine requesting fragments: a
// capacity-1 mailbox guarded by a mutex, with two unbuffered channels
// standing in for the source's to_worker/to_caller semaphores.
type downloadSlot struct {
	mu sync.Mutex

	url     string
	cookies string

	data []byte
	err  error

	abort bool

	toWorker chan struct{}
	toCaller chan struct{}
}

func newDownloadSlot() *downloadSlot {
	return &downloadSlot{
		toWorker: make(chan struct{}),
		toCaller: make(chan struct{}),
	}
}
