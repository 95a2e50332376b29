package planner

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/backmassage/clipstitch/internal/catalog"
)

// --- Helper builders ---

var epoch = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

// clipsAt builds a catalog in enumeration order with the given timestamp
// offsets (in seconds from epoch). Paths encode the enumeration index so
// tests can verify ordering.
func clipsAt(offsets ...int) []catalog.Clip {
	clips := make([]catalog.Clip, len(offsets))
	for i, off := range offsets {
		clips[i] = catalog.Clip{
			Path:      fmt.Sprintf("/in/clip%02d.mp4", i),
			Timestamp: epoch.Add(time.Duration(off) * time.Second),
		}
	}
	return clips
}

// --- Sort ---

func TestSort_Ascending(t *testing.T) {
	sorted := Sort(clipsAt(30, 10, 20))
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Before(sorted[i-1].Timestamp) {
			t.Fatalf("not ascending at %d: %v", i, sorted)
		}
	}
	if sorted[0].Path != "/in/clip01.mp4" {
		t.Errorf("earliest clip = %s, want clip01", sorted[0].Path)
	}
}

func TestSort_StableOnEqualTimestamps(t *testing.T) {
	// clips 1, 2 and 4 share a timestamp; their enumeration order must hold.
	sorted := Sort(clipsAt(3, 1, 1, 5, 1))
	want := []string{
		"/in/clip01.mp4", "/in/clip02.mp4", "/in/clip04.mp4",
		"/in/clip00.mp4", "/in/clip03.mp4",
	}
	for i, w := range want {
		if sorted[i].Path != w {
			t.Fatalf("position %d: got %s, want %s (full: %v)", i, sorted[i].Path, w, paths(sorted))
		}
	}
}

func TestSort_AssignsSequenceIndexes(t *testing.T) {
	sorted := Sort(clipsAt(5, 3, 4, 1, 2))
	for i, c := range sorted {
		if c.SeqIndex != i {
			t.Errorf("SeqIndex at %d = %d", i, c.SeqIndex)
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := clipsAt(3, 1, 2)
	Sort(in)
	if in[0].Path != "/in/clip00.mp4" || !in[0].Timestamp.Equal(epoch.Add(3*time.Second)) {
		t.Error("Sort mutated its input")
	}
}

// --- Split ---

func TestSplit_SizesAndCoverage(t *testing.T) {
	tests := []struct {
		total, n  int
		wantSizes []int
	}{
		{7, 3, []int{3, 2, 2}},
		{10, 3, []int{4, 3, 3}},
		{6, 3, []int{2, 2, 2}},
		{5, 5, []int{1, 1, 1, 1, 1}},
		{5, 1, []int{5}},
		{1, 1, []int{1}},
		{8, 5, []int{2, 2, 2, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d clips %d parts", tt.total, tt.n), func(t *testing.T) {
			offsets := make([]int, tt.total)
			for i := range offsets {
				offsets[i] = i
			}
			sorted := Sort(clipsAt(offsets...))

			parts, err := Split(sorted, tt.n)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if len(parts) != tt.n {
				t.Fatalf("got %d parts, want %d", len(parts), tt.n)
			}

			var rejoined []catalog.Clip
			for i, p := range parts {
				if p.Number != i+1 {
					t.Errorf("part %d has Number %d", i, p.Number)
				}
				if len(p.Clips) != tt.wantSizes[i] {
					t.Errorf("part %d size = %d, want %d", p.Number, len(p.Clips), tt.wantSizes[i])
				}
				rejoined = append(rejoined, p.Clips...)
			}

			// Concatenating the partitions reproduces the sorted catalog
			// exactly: no drops, no duplicates, no reordering.
			if len(rejoined) != len(sorted) {
				t.Fatalf("rejoined %d clips, want %d", len(rejoined), len(sorted))
			}
			for i := range sorted {
				if rejoined[i].Path != sorted[i].Path {
					t.Fatalf("rejoined order diverges at %d: %s vs %s", i, rejoined[i].Path, sorted[i].Path)
				}
			}
		})
	}
}

func TestSplit_RemainderGoesToEarliestParts(t *testing.T) {
	// 7 clips into 3 parts: 7 mod 3 = 1 extra clip, and it must land on
	// part 1 (the earliest clips), giving sizes [3 2 2] — not [2 2 3].
	sorted := Sort(clipsAt(0, 1, 2, 3, 4, 5, 6))
	parts, err := Split(sorted, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts[0].Clips) != 3 || len(parts[1].Clips) != 2 || len(parts[2].Clips) != 2 {
		t.Fatalf("sizes = [%d %d %d], want [3 2 2]",
			len(parts[0].Clips), len(parts[1].Clips), len(parts[2].Clips))
	}
	if parts[0].Clips[0].SeqIndex != 0 {
		t.Error("part 1 must start with the earliest clip")
	}
}

func TestSplit_SpecExample(t *testing.T) {
	// Catalog of 7 clips timestamped [3 1 1 5 2 4 1] in enumeration order,
	// split in 3: parts sized [3 2 2], part 1 = the 3 earliest clips, which
	// are the three timestamp-1 clips in enumeration order.
	sorted := Sort(clipsAt(3, 1, 1, 5, 2, 4, 1))
	parts, err := Split(sorted, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts[0].Clips) != 3 || len(parts[1].Clips) != 2 || len(parts[2].Clips) != 2 {
		t.Fatalf("sizes = [%d %d %d], want [3 2 2]",
			len(parts[0].Clips), len(parts[1].Clips), len(parts[2].Clips))
	}
	wantFirst := []string{"/in/clip01.mp4", "/in/clip02.mp4", "/in/clip06.mp4"}
	for i, w := range wantFirst {
		if parts[0].Clips[i].Path != w {
			t.Errorf("part 1 clip %d = %s, want %s", i, parts[0].Clips[i].Path, w)
		}
	}
}

func TestSplit_SinglePartIsWholeCatalog(t *testing.T) {
	sorted := Sort(clipsAt(4, 2, 9, 1))
	parts, err := Split(sorted, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 || len(parts[0].Clips) != 4 {
		t.Fatalf("got %d parts / %d clips, want 1 part with 4 clips", len(parts), len(parts[0].Clips))
	}
}

func TestSplit_InvalidCounts(t *testing.T) {
	sorted := Sort(clipsAt(1, 2, 3))
	for _, n := range []int{0, -1, 4, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			_, err := Split(sorted, n)
			if !errors.Is(err, ErrInvalidPartitionCount) {
				t.Errorf("Split(_, %d) err = %v, want ErrInvalidPartitionCount", n, err)
			}
		})
	}
}

// --- BuildTargets ---

func TestBuildTargets_SinglePart(t *testing.T) {
	parts, _ := Split(Sort(clipsAt(1, 2)), 1)
	targets := BuildTargets(parts, "/media/summer-2021/", "/out")
	if len(targets) != 1 {
		t.Fatalf("got %d targets, want 1", len(targets))
	}
	if targets[0].OutputPath != "/out/summer-2021.mp4" {
		t.Errorf("OutputPath = %q, want /out/summer-2021.mp4", targets[0].OutputPath)
	}
}

func TestBuildTargets_MultiPartNaming(t *testing.T) {
	parts, _ := Split(Sort(clipsAt(1, 2, 3)), 3)
	targets := BuildTargets(parts, "/media/summer-2021", "/out")
	want := []string{
		"/out/summer-2021-part1.mp4",
		"/out/summer-2021-part2.mp4",
		"/out/summer-2021-part3.mp4",
	}
	for i, w := range want {
		if targets[i].OutputPath != w {
			t.Errorf("target %d = %q, want %q", i, targets[i].OutputPath, w)
		}
	}
}

// --- DuplicateTimestamps ---

func TestDuplicateTimestamps(t *testing.T) {
	sorted := Sort(clipsAt(1, 1, 2, 3, 3, 3))
	dups := DuplicateTimestamps(sorted)
	if len(dups) != 3 {
		t.Fatalf("got %d duplicate pairs, want 3", len(dups))
	}

	none := DuplicateTimestamps(Sort(clipsAt(1, 2, 3)))
	if len(none) != 0 {
		t.Errorf("got %d duplicate pairs, want 0", len(none))
	}
}

func paths(clips []catalog.Clip) []string {
	out := make([]string, len(clips))
	for i, c := range clips {
		out[i] = c.Path
	}
	return out
}
