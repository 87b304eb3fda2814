package hds

import (
	"github.com/neutrino-images/ni-ffmpeg/logger"
	"github.com/neutrino-images/ni-ffmpeg/transport"
)

type demuxOptions struct {
	client  transport.Client
	logger  *logger.Logger
	quality string
	retries int
}

func defaultOptions() *demuxOptions {
	return &demuxOptions{
		client:  &transport.HTTPClient{},
		logger:  nil,
		quality: "",
		retries: DownloadRetries,
	}
}

// Option configures a Demuxer at Open time.
type Option func(*demuxOptions)

// WithQuality selects which quality-tagged run-table entries to use
// when a bootstrap carries more than one. The empty string (the
// default) treats every run table as a match, quality-tagged or not.
func WithQuality(quality string) Option {
	return func(o *demuxOptions) { o.quality = quality }
}

// WithHTTPClient overrides the transport.Client used for the manifest,
// bootstrap, and fragment downloads.
func WithHTTPClient(c transport.Client) Option {
	return func(o *demuxOptions) { o.client = c }
}

// WithLogger attaches a logger.Logger that receives download-attempt
// and error diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(o *demuxOptions) { o.logger = l }
}

// WithRetries overrides the number of download attempts per fragment
// before it is reported as ErrNetworkFailure.
func WithRetries(n int) Option {
	return func(o *demuxOptions) {
		if n > 0 {
			o.retries = n
		}
	}
}
