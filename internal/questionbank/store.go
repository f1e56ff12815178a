package questionbank

import "context"

// Store is the read/write surface of the question bank. Listings are always
// returned in ascending Order so callers can treat them as the canonical
// questionnaire sequence.
type Store interface {
	ListSubcategories(ctx context.Context) ([]Subcategory, error)
	GetSubcategory(ctx context.Context, id string) (Subcategory, error)

	ListQuestions(ctx context.Context, subcategoryID string) ([]Question, error)
	AddQuestion(ctx context.Context, subcategoryID string, q Question) (Question, error)

	// SwapOrder exchanges the Order values of two questions, the primitive the
	// admin editor uses to move a question up or down.
	SwapOrder(ctx context.Context, subcategoryID, questionIDA, questionIDB string) error
}
