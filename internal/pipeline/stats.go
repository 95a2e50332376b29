package pipeline

import "time"

// PartStatus describes the outcome of one planned output movie.
type PartStatus string

const (
	StatusEncoded PartStatus = "encoded"
	StatusSkipped PartStatus = "skipped"
	StatusFailed  PartStatus = "failed"
	StatusPlanned PartStatus = "planned" // dry run
)

// PartResult records what happened to a single partition.
type PartResult struct {
	Number      int
	OutputPath  string
	ClipCount   int
	Status      PartStatus
	Hint        string
	OutputBytes int64
	Elapsed     time.Duration
}

// RunStats aggregates the outcome of a whole run.
type RunStats struct {
	Parts       []PartResult
	TotalClips  int
	Encoded     int
	Skipped     int
	Failed      int
	Interrupted bool
	Elapsed     time.Duration
}

func (s *RunStats) add(r PartResult) {
	s.Parts = append(s.Parts, r)
	switch r.Status {
	case StatusEncoded, StatusPlanned:
		s.Encoded++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// OK reports whether every planned partition was produced or
// deliberately skipped.
func (s *RunStats) OK() bool {
	return !s.Interrupted && s.Failed == 0
}
