package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/partner"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ClientService provides client directory operations
type ClientService struct {
	clients   partner.ClientRepository
	contracts billing.ContractRepository
}

// NewClientService creates a new ClientService
func NewClientService(clients partner.ClientRepository, contracts billing.ContractRepository) *ClientService {
	return &ClientService{
		clients:   clients,
		contracts: contracts,
	}
}

// ClientResponse is the client DTO returned to callers
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toClientResponse(c *partner.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone,
		Notes:     c.Notes,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateClientInput contains input for client creation
type CreateClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     string
}

// CreateClient registers a new client for the tenant
func (s *ClientService) CreateClient(ctx context.Context, tenantID uuid.UUID, input CreateClientInput) (*ClientResponse, error) {
	client, err := partner.NewClient(tenantID, input.FirstName, input.LastName, input.Email, input.Phone, input.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("client created", zap.String("client_id", client.ID.String()))
	return toClientResponse(client), nil
}

// GetClient returns one client of the tenant
func (s *ClientService) GetClient(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ListClients returns the tenant's clients, paginated
func (s *ClientService) ListClients(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ClientResponse], error) {
	page, err := s.clients.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]*ClientResponse, len(page.Items))
	for i, client := range page.Items {
		responses[i] = toClientResponse(client)
	}
	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// UpdateClient changes a client's contact details
func (s *ClientService) UpdateClient(ctx context.Context, tenantID, id uuid.UUID, input CreateClientInput) (*ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := client.Update(input.FirstName, input.LastName, input.Email, input.Phone, input.Notes); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// DeactivateClient archives a client. Existing contracts and their history
// are unaffected.
func (s *ClientService) DeactivateClient(ctx context.Context, tenantID, id uuid.UUID) error {
	client, err := s.clients.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	client.Deactivate()
	return s.clients.Save(ctx, client)
}

// ActivateClient restores an archived client
func (s *ClientService) ActivateClient(ctx context.Context, tenantID, id uuid.UUID) error {
	client, err := s.clients.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	client.Activate()
	return s.clients.Save(ctx, client)
}

// DeleteClient soft deletes a client that has no contracts
func (s *ClientService) DeleteClient(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.clients.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	contracts, err := s.contracts.FindByClient(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if len(contracts) > 0 {
		return shared.NewDomainError("HAS_CONTRACTS", "Clients with contracts can be archived but not deleted")
	}
	return s.clients.Delete(ctx, tenantID, id)
}
