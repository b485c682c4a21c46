package imagegen

import "context"

// Stub is the generator used when no image service is configured.
// It produces no payload, so every dish keeps its placeholder.
type Stub struct{}

func (Stub) Generate(ctx context.Context, prompt string) (string, error) {
	return "", nil
}
