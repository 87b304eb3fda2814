package hds

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeAMFString appends a length-prefixed AMF0 string (no leading type
// byte) to buf.
func writeAMFString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
}

func amfNumberProp(buf *bytes.Buffer, name string, v float64) {
	writeAMFString(buf, name)
	buf.WriteByte(amfNumber)
	binary.Write(buf, binary.BigEndian, v)
}

func amfStringProp(buf *bytes.Buffer, name, value string) {
	writeAMFString(buf, name)
	buf.WriteByte(amfString)
	writeAMFString(buf, value)
}

// buildOnMetaData assembles a minimal onMetaData AMF0 ECMA array with
// the given number properties.
func buildOnMetaData(t *testing.T, props map[string]float64) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(amfString)
	writeAMFString(&buf, "onMetaData")
	buf.WriteByte(amfMixedArray)
	binary.Write(&buf, binary.BigEndian, uint32(len(props)))
	for name, v := range props {
		amfNumberProp(&buf, name, v)
	}
	writeAMFString(&buf, "") // end-of-object empty key
	buf.WriteByte(amfEndOfObj)
	return buf.Bytes()
}

func TestParseMetadataVideoAndAudio(t *testing.T) {
	raw := buildOnMetaData(t, map[string]float64{
		"width":           1280,
		"height":          720,
		"videocodecid":    7,
		"audiocodecid":    float64(flvAudioCodecAAC),
		"audiosamplerate": 44100,
		"audiochannels":   2,
	})

	md, err := ParseMetadata(raw)
	require.NoError(t, err)
	require.Equal(t, 1280, md.Width)
	require.Equal(t, 720, md.Height)
	require.Equal(t, VideoCodecH264, md.VideoCodec)
	require.Equal(t, AudioCodecAAC, md.AudioCodec)
	require.Equal(t, 44100, md.AudioSampleRate)
	require.Equal(t, 2, md.AudioChannels)
}

func TestParseMetadataUnknownVideoCodecKeepsAudio(t *testing.T) {
	raw := buildOnMetaData(t, map[string]float64{
		"videocodecid": 99, // unrecognized, should not set VideoCodecH264
		"audiocodecid": float64(flvAudioCodecMP3),
	})

	md, err := ParseMetadata(raw)
	require.NoError(t, err)
	require.Equal(t, VideoCodecNone, md.VideoCodec)
	require.Equal(t, AudioCodecMP3, md.AudioCodec)
	require.True(t, md.AudioNeedsParse)
}

func TestParseMetadataEmptyBuffer(t *testing.T) {
	md, err := ParseMetadata(nil)
	require.NoError(t, err)
	require.Equal(t, 1, md.AudioChannels)
}

func TestParseMetadataRejectsWrongSentinel(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(amfString)
	writeAMFString(&buf, "notMetaData")
	_, err := ParseMetadata(buf.Bytes())
	require.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestAssignAudioCodecNellymoserDefaults(t *testing.T) {
	md := NewMetadata()
	assignAudioCodecFromID(&md, flvAudioCodecNellymoser16kMono)
	require.Equal(t, 16000, md.AudioSampleRate)
	require.Equal(t, 1, md.AudioChannels)
	require.Equal(t, AudioCodecNellymoser, md.AudioCodec)
}
