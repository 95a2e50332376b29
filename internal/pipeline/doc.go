// Package pipeline orchestrates a merge run: it catalogs the input
// folder, plans the partitions, encodes each output movie through
// ffmpeg, and collects per-partition results for the final summary.
package pipeline
