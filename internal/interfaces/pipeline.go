package interfaces

import "context"

// Pipeline runs the acquisition and index-recomputation passes.
type Pipeline interface {
	// RunOnce drains as many months as the daily quota allows, then runs a
	// full recomputation pass over the stored history.
	RunOnce(ctx context.Context) error

	// Recompute rebuilds the smoothed index columns from the complete
	// raw-score history without fetching anything.
	Recompute(ctx context.Context) error
}
