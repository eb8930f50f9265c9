package port

import "context"

// Generator produces an answer from retrieved context and a user query.
type Generator interface {
	// GenerateResponse answers query using context. Implementations must not
	// truncate context.
	GenerateResponse(ctx context.Context, context, query string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
