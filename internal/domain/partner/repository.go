package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
)

// ClientRepository defines the persistence port for clients. All lookups
// are tenant-scoped.
type ClientRepository interface {
	Save(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Client], error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
