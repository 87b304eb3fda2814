// Package hds implements the core of an Adobe HTTP Dynamic Streaming
// (HDS) client: a demuxer that turns a remote F4M manifest URL into a
// continuous sequence of elementary audio/video packets.
//
// It covers the F4M manifest and F4F bootstrap model, AMF0 metadata
// decoding, a per-rendition fragment prefetch scheduler, and an FLV tag
// decoder that turns a downloaded fragment's mdat payload into samples.
//
// @see https://wwwimages.adobe.com/www.adobe.com/content/dam/Adobe/en/devnet/hds/pdfs/adobe-hds-specification.pdf
// @see https://wwwimages.adobe.com/www.adobe.com/content/dam/Adobe/en/devnet/hds/pdfs/adobe-media-manifest-specification.pdf
// @see https://download.macromedia.com/f4v/video_file_format_spec_v10_1.pdf
package hds

// MaxURLSize bounds URL composition, matching the source's fixed-size
// buffers. Go strings aren't fixed-capacity, so this is enforced by the
// truncating helpers in url.go instead of a buffer size.
const MaxURLSize = 4096

// MaxSamples caps the number of samples decoded from one fragment.
const MaxSamples = 1024

// DownloadRetries is the default number of download attempts the
// worker makes for one fetch before giving up.
const DownloadRetries = 15
