package hds

import (
	"strconv"
	"strings"
)

// truncate bounds s to MaxURLSize, matching the source's fixed-capacity
// url buffers and their silent-truncation behavior.
func truncate(s string) string {
	if len(s) > MaxURLSize {
		return s[:MaxURLSize]
	}
	return s
}

// querySuffix returns the "?..." suffix of manifestURL, or "" if
// targetURL already carries its own query string. This is the guard
// the source applies inconsistently (§9, "possible source bug — query
// suffix in retry path"); here it is applied uniformly to every caller.
func querySuffix(manifestURL, targetURL string) string {
	if strings.Contains(targetURL, "?") {
		return ""
	}
	if i := strings.Index(manifestURL, "?"); i >= 0 {
		return manifestURL[i:]
	}
	return ""
}

// baseURL derives the base URL from a manifest URL by truncating it at
// "manifest.f4m" (case-insensitive), the substring before which is the
// base every relative bootstrap/media URL is resolved against.
func baseURL(manifestURL string) (string, bool) {
	lower := strings.ToLower(manifestURL)
	idx := strings.Index(lower, "manifest.f4m")
	if idx < 0 {
		return "", false
	}
	return manifestURL[:idx], true
}

// bootstrapURL builds the download URL for a bootstrap's external box,
// forwarding the manifest's query suffix only when the bootstrap's own
// relative URL has none.
func bootstrapURL(base, bootstrapRelURL, manifestURL string) string {
	return truncate(base + bootstrapRelURL + querySuffix(manifestURL, bootstrapRelURL))
}

// fragmentURL builds the download URL for one (segment, fragment) pair
// of a media rendition, per the "{base}{media.url}Seg{u32}-Frag{u32}{?query}"
// shape in §6.
func fragmentURL(base, mediaRelURL string, segment, fragment uint32, manifestURL string) string {
	name := segFragName(segment, fragment)
	return truncate(base + mediaRelURL + name + querySuffix(manifestURL, mediaRelURL))
}

func segFragName(segment, fragment uint32) string {
	return "Seg" + strconv.FormatUint(uint64(segment), 10) + "-Frag" + strconv.FormatUint(uint64(fragment), 10)
}
