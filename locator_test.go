package hds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testBootstrap() *Bootstrap {
	return &Bootstrap{
		ID: "bootstrap-1",
		Box: BootstrapBox{
			SegmentRunTables: []SegmentRunTable{
				{Entries: []SegmentRunEntry{{FirstSegment: 1, FragmentsPerSegment: 3}}},
			},
			FragmentRunTables: []FragmentRunTable{
				{Entries: []FragmentRunEntry{
					{FirstFragment: 1, FirstFragmentTimeStamp: 0, FragmentDuration: 10000},
					{FirstFragment: 2, FirstFragmentTimeStamp: 10000, FragmentDuration: 10000},
					{FirstFragment: 3, FirstFragmentTimeStamp: 20000, FragmentDuration: 10000},
				}},
			},
		},
	}
}

func TestFragmentForTimestamp(t *testing.T) {
	b := testBootstrap()

	idx, err := fragmentForTimestamp(b, "", 15000)
	require.NoError(t, err)
	require.Equal(t, uint32(2), idx)

	idx, err = fragmentForTimestamp(b, "", 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx)
}

func TestFragmentForTimestampNoMatchingQuality(t *testing.T) {
	b := testBootstrap()
	b.Box.FragmentRunTables[0].QualityEntries = []string{"high"}
	_, err := fragmentForTimestamp(b, "quality-that-does-not-exist", 15000)
	require.ErrorIs(t, err, ErrBootstrapIncomplete)
}

// singleEntryBootstrap is a bootstrap whose fragment run table has a
// single entry spanning every fragment, the shape a seek into an
// in-progress segment actually has: the target fragment must be
// interpolated from the entry, not just handed back its FirstFragment.
func singleEntryBootstrap() *Bootstrap {
	return &Bootstrap{
		ID: "bootstrap-1",
		Box: BootstrapBox{
			SegmentRunTables: []SegmentRunTable{
				{Entries: []SegmentRunEntry{{FirstSegment: 1, FragmentsPerSegment: 3}}},
			},
			FragmentRunTables: []FragmentRunTable{
				{Entries: []FragmentRunEntry{
					{FirstFragment: 1, FirstFragmentTimeStamp: 0, FragmentDuration: 10000},
				}},
			},
		},
	}
}

func TestFragmentForTimestampInterpolatesWithinSingleEntry(t *testing.T) {
	b := singleEntryBootstrap()

	idx, err := fragmentForTimestamp(b, "", 15000)
	require.NoError(t, err)
	require.Equal(t, uint32(2), idx)

	idx, err = fragmentForTimestamp(b, "", 25000)
	require.NoError(t, err)
	require.Equal(t, uint32(3), idx)
}

func TestSeekThenNextFragmentMatchesInterpolatedTarget(t *testing.T) {
	b := singleEntryBootstrap()

	target, err := fragmentForTimestamp(b, "", 15000)
	require.NoError(t, err)
	require.Equal(t, uint32(2), target)

	nbFragmentsRead := target - 1 // Seek's NbFragmentsRead assignment
	seg, frag, err := segmentFragmentForIndex(b, "", false, nbFragmentsRead, nbFragmentsRead)
	require.NoError(t, err)
	require.Equal(t, uint32(1), seg)
	require.Equal(t, uint32(2), frag)
}

func TestSegmentFragmentForIndexWithinFirstSegment(t *testing.T) {
	b := testBootstrap()
	seg, frag, err := segmentFragmentForIndex(b, "", false, 0, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), seg)
	require.Equal(t, uint32(2), frag)
}

func TestSegmentFragmentForIndexEndOfStreamWhenTablesExhausted(t *testing.T) {
	b := testBootstrap() // exactly 3 fragments described

	for i := uint32(0); i < 3; i++ {
		_, _, err := segmentFragmentForIndex(b, "", false, i, i)
		require.NoError(t, err)
	}

	_, _, err := segmentFragmentForIndex(b, "", false, 3, 3)
	require.ErrorIs(t, err, ErrEndOfStream)
}

func TestSegmentFragmentForIndexLiveShortcut(t *testing.T) {
	b := testBootstrap()
	seg, frag, err := segmentFragmentForIndex(b, "", true, 5, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), seg)
	require.Equal(t, uint32(6), frag)
}

func TestQualityWildcardMatch(t *testing.T) {
	require.True(t, matchesQuality(nil, ""))
	require.True(t, matchesQuality(nil, "high"))
	require.True(t, matchesQuality([]string{"high"}, ""))
	require.True(t, matchesQuality([]string{"high", "low"}, "low"))
}
