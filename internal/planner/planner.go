// Package planner orders the clip catalog by timestamp and splits it into
// the requested number of contiguous output partitions.
package planner

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/backmassage/clipstitch/internal/catalog"
	"github.com/backmassage/clipstitch/internal/config"
)

// ErrInvalidPartitionCount is returned when the requested number of parts is
// not positive or exceeds the number of clips (more non-empty partitions
// than clips cannot exist). It is fatal and reported before any encoding.
var ErrInvalidPartitionCount = errors.New("invalid partition count")

// Partition is one contiguous group of timestamp-ordered clips that becomes
// one output movie. Number is 1-based.
type Partition struct {
	Number int
	Clips  []catalog.Clip
}

// OutputTarget pairs a partition with its destination file.
type OutputTarget struct {
	Partition
	OutputPath string
}

// Sort returns a copy of the catalog ordered ascending by timestamp. The
// sort is stable: clips with identical timestamps (e.g. burst recordings
// sharing a whole-second tag) keep their directory enumeration order, which
// makes the final ordering deterministic. SeqIndex is assigned from the
// sorted position.
func Sort(clips []catalog.Clip) []catalog.Clip {
	sorted := slices.Clone(clips)
	slices.SortStableFunc(sorted, func(a, b catalog.Clip) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	for i := range sorted {
		sorted[i].SeqIndex = i
	}
	return sorted
}

// Split partitions the sorted catalog into exactly n contiguous,
// non-overlapping parts that cover it completely and preserve its order.
// Every part holds floor(T/n) or ceil(T/n) clips; the first T mod n parts
// carry the extra clip, so the remainder lands on the earliest-recorded
// clips.
func Split(sorted []catalog.Clip, n int) ([]Partition, error) {
	total := len(sorted)
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d (need at least 1)", ErrInvalidPartitionCount, n)
	}
	if n > total {
		return nil, fmt.Errorf("%w: %d parts requested but only %d clips", ErrInvalidPartitionCount, n, total)
	}

	base, rem := total/n, total%n
	parts := make([]Partition, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		parts = append(parts, Partition{
			Number: i + 1,
			Clips:  sorted[start : start+size],
		})
		start += size
	}
	return parts, nil
}

// BuildTargets derives the destination path for each partition. The file
// name comes from the input directory's base name; with more than one part
// it is disambiguated by the 1-based part number:
//
//	N = 1: <outputDir>/<inputBase>.mp4
//	N > 1: <outputDir>/<inputBase>-part<Number>.mp4
func BuildTargets(parts []Partition, inputDir, outputDir string) []OutputTarget {
	base := filepath.Base(config.NormalizeDirArg(inputDir))

	targets := make([]OutputTarget, 0, len(parts))
	for _, p := range parts {
		name := base + ".mp4"
		if len(parts) > 1 {
			name = fmt.Sprintf("%s-part%d.mp4", base, p.Number)
		}
		targets = append(targets, OutputTarget{
			Partition:  p,
			OutputPath: filepath.Join(outputDir, name),
		})
	}
	return targets
}

// DuplicatePair reports two clips sharing the exact same timestamp, which
// often indicates a re-exported or copied clip.
type DuplicatePair struct {
	First, Second catalog.Clip
}

// DuplicateTimestamps scans the sorted catalog for adjacent clips with equal
// timestamps. Sorting guarantees equal timestamps are adjacent, so a single
// pass finds every duplicate.
func DuplicateTimestamps(sorted []catalog.Clip) []DuplicatePair {
	var dups []DuplicatePair
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) {
			dups = append(dups, DuplicatePair{First: sorted[i-1], Second: sorted[i]})
		}
	}
	return dups
}
