package contracts

import "context"

// BracketStore is key-value persistence for bracket aggregates.
// Load returns ErrNotFound for unknown ids.
type BracketStore interface {
	Save(ctx context.Context, bracket *Bracket) error
	Load(ctx context.Context, id string) (*Bracket, error)
	ListByUser(ctx context.Context, userID string) ([]*Bracket, error)

	// ListActive returns brackets that are not yet completed, for the
	// refresh sweep.
	ListActive(ctx context.Context) ([]*Bracket, error)
}
