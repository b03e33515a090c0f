package crm

import (
	"context"
	"fmt"
	"log"
)

// NewStore picks the backend from the database URL: postgres when one is
// configured, in-memory otherwise.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		log.Printf("crm: no DATABASE_URL, using in-memory store")
		return NewInMemoryStore(), nil
	}
	store, err := NewPostgresStore(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	log.Printf("crm: using postgres store")
	return store, nil
}
