package hds

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neutrino-images/ni-ffmpeg/logger"
	"github.com/neutrino-images/ni-ffmpeg/transport"
)

// startDownloadWorker launches the background goroutine that owns a
// Media's fragment fetches. It runs until ctx is canceled.
func startDownloadWorker(ctx context.Context, client transport.Client, log *logger.Logger, retries int, slot *downloadSlot) {
	if retries <= 0 {
		retries = DownloadRetries
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-slot.toWorker:
			}

			slot.mu.Lock()
			url := slot.url
			cookies := slot.cookies
			slot.mu.Unlock()

			data, cookies2, err := downloadWithRetries(ctx, client, log, retries, url, cookies)

			slot.mu.Lock()
			aborted := slot.abort
			if !aborted {
				slot.data = data
				slot.err = err
				if cookies2 != "" {
					slot.cookies = cookies2
				}
			}
			slot.abort = false
			slot.mu.Unlock()

			if !aborted {
				slot.toCaller <- struct{}{}
			}
		}
	}()
}

// downloadWithRetries fetches url, making up to retries attempts
// with a short sleep between attempts and an abort check at every
// boundary, the Go analogue of the source's retry loop around
// ffurl_open/ffurl_read.
func downloadWithRetries(ctx context.Context, client transport.Client, log *logger.Logger, retries int, url, cookies string) ([]byte, string, error) {
	traceID := uuid.New().String()

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		default:
		}

		if log != nil {
			log.Debug("fetch %s attempt %d/%d trace=%s", url, attempt, retries, traceID)
		}

		resp, err := client.Open(ctx, url, cookies)
		if err != nil {
			lastErr = err
			if log != nil {
				log.Warn("fetch %s failed: %v trace=%s", url, err, traceID)
			}
			if !sleepOrAbort(ctx, time.Second) {
				return nil, "", ctx.Err()
			}
			continue
		}

		data, err := resp.ReadAll()
		respCookies := resp.Cookies()
		resp.Close()
		if err != nil {
			lastErr = err
			if !sleepOrAbort(ctx, time.Second) {
				return nil, "", ctx.Err()
			}
			continue
		}

		return data, respCookies, nil
	}

	return nil, "", fmt.Errorf("%w: %s: %v", ErrNetworkFailure, url, lastErr)
}

func sleepOrAbort(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// requestFragment hands a (possibly redirected) URL to the worker and
// blocks until it answers, honoring ctx cancellation by requesting an
// abort instead of leaking the goroutine mid-fetch. A non-empty cookies
// argument replaces the jar; an empty one leaves whatever the previous
// completed request's response set (§4.6 step 5), so a caller that has
// no cookies of its own to force never wipes what the worker already
// collected.
func requestFragment(ctx context.Context, slot *downloadSlot, url, cookies string) ([]byte, error) {
	slot.mu.Lock()
	slot.url = url
	if cookies != "" {
		slot.cookies = cookies
	}
	slot.mu.Unlock()

	select {
	case slot.toWorker <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-slot.toCaller:
	case <-ctx.Done():
		slot.mu.Lock()
		slot.abort = true
		slot.mu.Unlock()
		return nil, ctx.Err()
	}

	slot.mu.Lock()
	data, err := slot.data, slot.err
	slot.data, slot.err = nil, nil
	slot.mu.Unlock()
	return data, err
}
