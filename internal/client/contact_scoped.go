package client

import (
	"context"

	"github.com/smartbusiness/api2-go/internal/endpoint"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// contactScoped adapts an endpoint.Contextual to sbapi.ContactScopedClient.
type contactScoped struct {
	*endpoint.Contextual
}

func newContactScoped(nested *endpoint.Nested) *contactScoped {
	return &contactScoped{Contextual: endpoint.NewContextual(nested)}
}

func (s *contactScoped) SetContactID(contactID int) {
	s.SetParentID(contactID)
}

func (s *contactScoped) ContactID() (int, bool) {
	return s.ParentID()
}

func (s *contactScoped) ForContact(contactID int) sbapi.ContactScopedClient {
	return &contactScoped{Contextual: s.WithParentID(contactID)}
}

func (s *contactScoped) ListForContact(ctx context.Context, contactID int, params *sbapi.ListParameters) (*sbapi.Response, error) {
	return s.Nested().List(ctx, contactID, params)
}

func (s *contactScoped) GetForContact(ctx context.Context, contactID, id int, params *sbapi.GetParameters) (*sbapi.Response, error) {
	return s.Nested().Get(ctx, contactID, id, params)
}

func (s *contactScoped) CreateForContact(ctx context.Context, contactID int, payload sbapi.Payload) (*sbapi.Response, error) {
	return s.Nested().Create(ctx, contactID, payload)
}

func (s *contactScoped) UpdateForContact(ctx context.Context, contactID, id int, payload sbapi.Payload) (*sbapi.Response, error) {
	return s.Nested().Update(ctx, contactID, id, payload)
}

func (s *contactScoped) DeleteForContact(ctx context.Context, contactID int, ids []int) (*sbapi.Response, error) {
	return s.Nested().Delete(ctx, contactID, ids)
}

var _ sbapi.ContactScopedClient = (*contactScoped)(nil)
