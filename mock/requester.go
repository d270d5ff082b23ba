// Package mock provides test doubles for agenticflow interfaces using function fields.
package mock

import (
	"context"

	"github.com/agenticflow/agenticflow"
)

// Interface compliance checks.
var (
	_ agenticflow.Requester       = (*Requester)(nil)
	_ agenticflow.CredentialStore = (*CredentialStore)(nil)
)

// Requester is a test double for agenticflow.Requester.
// Set the function fields for the methods you need; calling a method whose
// field is nil panics to catch missing setup.
type Requester struct {
	RequestFn       func(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error)
	RequestStreamFn func(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.LiveResponse, error)
}

// Request delegates to RequestFn.
func (r *Requester) Request(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	return r.RequestFn(ctx, method, path, opts)
}

// RequestStream delegates to RequestStreamFn.
func (r *Requester) RequestStream(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.LiveResponse, error) {
	return r.RequestStreamFn(ctx, method, path, opts)
}

// CredentialStore is a test double for agenticflow.CredentialStore.
type CredentialStore struct {
	GetFn    func(profile string) (string, error)
	SetFn    func(profile, apiKey string) error
	DeleteFn func(profile string) error
}

// Get delegates to GetFn.
func (s *CredentialStore) Get(profile string) (string, error) {
	return s.GetFn(profile)
}

// Set delegates to SetFn.
func (s *CredentialStore) Set(profile, apiKey string) error {
	return s.SetFn(profile, apiKey)
}

// Delete delegates to DeleteFn.
func (s *CredentialStore) Delete(profile string) error {
	return s.DeleteFn(profile)
}
