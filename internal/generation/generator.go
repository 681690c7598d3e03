// Package generation defines the boundary to external content generation.
package generation

import "context"

// StoryGenerator defines the interface for generating a short narrative
// from a day's review words. It is the boundary between the scheduler
// core and external LLM services; the scheduler treats the result as an
// opaque text blob attached to the daily queue.
type StoryGenerator interface {
	// GenerateStory creates a short story weaving the given terms
	// together, for context-based recall practice.
	//
	// Returns the story text, or an error if generation fails
	// (see errors.go for the specific types).
	GenerateStory(ctx context.Context, terms []string) (string, error)
}
