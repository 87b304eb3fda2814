// FLV tag decoding: an mdat box delivers a stream of legacy FLV tags
// (audio/video/script), each a 11-byte header plus payload plus a
// trailing 4-byte "previous tag size" footer. This mirrors the tag
// layout described by the FLV spec and decoded the same way
// go-oryx-lib's flv.go walks a tag stream.
package hds

import (
	"fmt"
)

const (
	flvTagAudio  = 8
	flvTagVideo  = 9
	flvTagScript = 18

	flvTagHeaderSize = 11
	flvPrevSizeLen   = 4
)

// sample is one decoded FLV tag ready to become a hoststream.Packet.
type sample struct {
	isVideo   bool
	timestamp uint32 // milliseconds, per the FLV tag header
	data      []byte
}

// decodeFLVTags walks buf as a sequence of FLV tags, returning up to
// MaxSamples audio/video samples. Script tags (onMetaData re-sent
// mid-stream by some encoders) are parsed for side effects on md and
// otherwise dropped.
func decodeFLVTags(buf []byte, md *Metadata) ([]sample, error) {
	var out []sample
	pos := 0

	for pos < len(buf) {
		if len(out) >= MaxSamples {
			break
		}
		if pos+flvTagHeaderSize > len(buf) {
			if pos == 0 {
				return nil, fmt.Errorf("%w: truncated flv tag header", ErrTruncated)
			}
			break
		}

		tagType := buf[pos]
		dataSize := uint32(buf[pos+1])<<16 | uint32(buf[pos+2])<<8 | uint32(buf[pos+3])
		ts := uint32(buf[pos+4])<<16 | uint32(buf[pos+5])<<8 | uint32(buf[pos+6])
		tsExt := uint32(buf[pos+7])
		timestamp := tsExt<<24 | ts

		dataStart := pos + flvTagHeaderSize
		dataEnd := dataStart + int(dataSize)
		if dataEnd > len(buf) {
			return nil, fmt.Errorf("%w: flv tag payload exceeds buffer", ErrTruncated)
		}
		payload := buf[dataStart:dataEnd]

		switch tagType {
		case flvTagVideo, flvTagAudio:
			out = append(out, sample{
				isVideo:   tagType == flvTagVideo,
				timestamp: timestamp,
				data:      payload,
			})
		case flvTagScript:
			if updated, err := ParseMetadata(payload); err == nil {
				mergeMetadata(md, updated)
			}
		}

		pos = dataEnd + flvPrevSizeLen
	}

	return out, nil
}

// mergeMetadata folds a mid-stream onMetaData update into md: Width,
// Height, VideoCodec, AudioCodec and AudioSampleRate are replaced when
// the update carries a non-zero value for them; every other field of
// md is left unchanged.
func mergeMetadata(md *Metadata, update Metadata) {
	if update.Width != 0 {
		md.Width = update.Width
	}
	if update.Height != 0 {
		md.Height = update.Height
	}
	if update.VideoCodec != VideoCodecNone {
		md.VideoCodec = update.VideoCodec
	}
	if update.AudioCodec != AudioCodecNone {
		md.AudioCodec = update.AudioCodec
	}
	if update.AudioSampleRate != 0 {
		md.AudioSampleRate = update.AudioSampleRate
	}
}
