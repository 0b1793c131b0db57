package embedding

import "context"

// Provider turns text into a unit-length embedding vector. Implementations
// must normalize: the knowledge store ranks by cosine distance and assumes
// magnitude 1.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
