package providerRepo

import (
	"context"

	"skillbridge/models"
)

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// UpdateReputation stores the provider's public rating projection computed
	// from seq rating records. It reports false, and writes nothing, when the
	// stored projection was computed from at least as many records.
	UpdateReputation(ctx context.Context, rep models.Reputation, seq int64) (bool, error)
}
