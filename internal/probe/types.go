package probe

import "time"

// ClipMeta holds the per-clip metadata the pipeline needs: a capture
// timestamp when the container records one, the display dimensions, and
// whether the clip carries an audio stream.
type ClipMeta struct {
	Path string

	// CreationTime is the capture timestamp extracted from container tags.
	// Valid only when HasCreationTime is true.
	CreationTime    time.Time
	HasCreationTime bool

	// Coded dimensions of the primary video stream, before rotation.
	Width  int
	Height int

	// Rotation is the display rotation in degrees, normalized to
	// 0, 90, 180 or 270.
	Rotation int

	HasAudio bool
}

// DisplayDims returns the dimensions of the clip as displayed, i.e. with
// width and height swapped for 90/270 degree rotations.
func (m *ClipMeta) DisplayDims() (int, int) {
	if m.Rotation == 90 || m.Rotation == 270 {
		return m.Height, m.Width
	}
	return m.Width, m.Height
}
