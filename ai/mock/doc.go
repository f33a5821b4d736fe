// Package mock provides a test double for the ai.Embedder interface.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vec, err := embedder.EmbedText(ctx, "graph neural networks")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("backend down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// MockEmbedder hashes each token to a pseudo-random direction and returns the
// normalized sum, so texts that share words have a positive cosine similarity
// and identical texts have similarity 1.
package mock
