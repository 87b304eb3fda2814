package hds

// matchesQuality reports whether a run table applies to the requested
// quality. A table with no quality entries applies to every quality,
// and an empty requested quality treats every table as a match,
// quality-tagged or not. Otherwise the table matches when any one of
// its entries equals quality.
func matchesQuality(qualityEntries []string, quality string) bool {
	if len(qualityEntries) == 0 || quality == "" {
		return true
	}
	for _, q := range qualityEntries {
		if q == quality {
			return true
		}
	}
	return false
}

// fragmentForTimestamp returns the index of the fragment whose
// [FirstFragmentTimeStamp, FirstFragmentTimeStamp+FragmentDuration)
// window contains ts, scanning the fragment run table entries matching
// quality in document order. The fragment number is interpolated
// within the window rather than just taken from the entry's own
// FirstFragment, per §4.4: first_fragment + (ts - first_fragment_time_stamp)
// / fragment_duration. It returns ErrBootstrapIncomplete if no entry
// covers ts.
func fragmentForTimestamp(b *Bootstrap, quality string, ts uint64) (uint32, error) {
	for _, table := range b.Box.FragmentRunTables {
		if !matchesQuality(table.QualityEntries, quality) {
			continue
		}
		for i, e := range table.Entries {
			// A zero duration marks a "discontinuity" entry in the
			// source; it never contains a timestamp on its own, so it
			// only matters as a boundary between neighboring entries.
			if e.FragmentDuration == 0 {
				continue
			}
			end := e.FirstFragmentTimeStamp + uint64(e.FragmentDuration)
			inRange := ts >= e.FirstFragmentTimeStamp && ts < end
			// Last entry: treat it as open-ended, so trailing access
			// within DVR windows still resolves.
			openEnded := i == len(table.Entries)-1 && ts >= e.FirstFragmentTimeStamp
			if inRange || openEnded {
				offset := uint32((ts - e.FirstFragmentTimeStamp) / uint64(e.FragmentDuration))
				return e.FirstFragment + offset, nil
			}
		}
	}
	return 0, ErrBootstrapIncomplete
}

// fragmentTerminated reports whether fragment falls at or after an
// explicit discontinuity marker in the fragment run table: a
// zero-duration entry, which per the F4F bootstrap format means no
// further fragment data exists from that FirstFragment onward. A live
// bootstrap's trailing entries are never terminators — a new afrt
// update is expected to replace them instead.
func fragmentTerminated(tables []FragmentRunTable, quality string, isLive bool, fragment uint32) bool {
	if isLive {
		return false
	}
	for _, table := range tables {
		if !matchesQuality(table.QualityEntries, quality) {
			continue
		}
		for _, e := range table.Entries {
			if e.FragmentDuration == 0 && fragment >= e.FirstFragment {
				return true
			}
		}
	}
	return false
}

// segmentForFragmentIndex maps a 0-based fragment index to its
// containing segment, by scanning the segment run table entries
// matching quality. Per §4.4, an entry's span runs up to the next
// entry's FirstSegment; a non-live bootstrap's final entry describes
// exactly one more segment; once skip remains positive after every
// entry is consumed, ErrEndOfStream is returned instead of assuming
// the final entry repeats indefinitely.
func segmentForFragmentIndex(tables []SegmentRunTable, quality string, isLive bool, fragmentIndex uint32) (uint32, error) {
	for _, table := range tables {
		if !matchesQuality(table.QualityEntries, quality) {
			continue
		}
		remaining := fragmentIndex
		for i, e := range table.Entries {
			perSegment := e.FragmentsPerSegment
			if perSegment == 0 {
				// "Until further notice": only valid on a live
				// bootstrap's trailing entry, where it means every
				// remaining fragment belongs to this segment.
				return e.FirstSegment, nil
			}

			isLast := i == len(table.Entries)-1
			var segSpan uint32
			switch {
			case !isLast:
				segSpan = table.Entries[i+1].FirstSegment - e.FirstSegment
			case isLive:
				segSpan = 1<<32 - 1
			default:
				segSpan = 1
			}

			seg := e.FirstSegment
			for s := uint32(0); segSpan == 1<<32-1 || s < segSpan; s++ {
				if remaining < perSegment {
					return seg, nil
				}
				remaining -= perSegment
				seg++
			}
		}
	}
	return 0, ErrEndOfStream
}

// segmentFragmentForIndex locates the (segment, fragment) pair for the
// fragmentIndex'th fragment (0-based) of a non-live media, or the live
// head's next fragment for a live one. Per §4.4 this consults both run
// tables: the fragment run table for an explicit discontinuity that
// marks the presentation's end, and the segment run table to map the
// fragment index to its containing segment (itself bounded, so running
// off the end of a non-live segment run table is also EndOfStream).
func segmentFragmentForIndex(b *Bootstrap, quality string, isLive bool, nbFragmentsRead uint32, fragmentIndex uint32) (segment, fragment uint32, err error) {
	if isLive && nbFragmentsRead > 0 {
		return 1, nbFragmentsRead + 1, nil
	}

	fragment = fragmentIndex + 1
	if fragmentTerminated(b.Box.FragmentRunTables, quality, isLive, fragment) {
		return 0, 0, ErrEndOfStream
	}

	segment, err = segmentForFragmentIndex(b.Box.SegmentRunTables, quality, isLive, fragmentIndex)
	if err != nil {
		return 0, 0, err
	}

	return segment, fragment, nil
}
