package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
)

// Client is a person the tenant sells contracts to
type Client struct {
	shared.TenantAggregateRoot
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Active    bool   `json:"active"`
}

// NewClient creates a new client for a tenant
func NewClient(tenantID uuid.UUID, firstName, lastName, email, phone, notes string) (*Client, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "First name cannot be empty")
	}
	if len(firstName) > 100 || len(lastName) > 100 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Name cannot exceed 100 characters")
	}

	return &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FirstName:           firstName,
		LastName:            lastName,
		Email:               strings.TrimSpace(email),
		Phone:               strings.TrimSpace(phone),
		Notes:               notes,
		Active:              true,
	}, nil
}

// FullName returns the display name of the client
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Update changes the client's contact details
func (c *Client) Update(firstName, lastName, email, phone, notes string) error {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return shared.NewDomainError("INVALID_INPUT", "First name cannot be empty")
	}

	c.FirstName = firstName
	c.LastName = strings.TrimSpace(lastName)
	c.Email = strings.TrimSpace(email)
	c.Phone = strings.TrimSpace(phone)
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate archives the client without deleting history
func (c *Client) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate restores an archived client
func (c *Client) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
