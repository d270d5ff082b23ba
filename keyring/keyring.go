// Package keyring stores API keys in the operating system keychain.
package keyring

import (
	"errors"
	"fmt"

	"github.com/agenticflow/agenticflow"
	gokeyring "github.com/zalando/go-keyring"
)

// DefaultService is the keychain service name entries are stored under.
const DefaultService = "agenticflow"

// Interface compliance check.
var _ agenticflow.CredentialStore = (*Store)(nil)

// Store implements agenticflow.CredentialStore. Each profile is one
// keychain entry under Service.
type Store struct {
	Service string
}

// NewStore returns a Store using DefaultService.
func NewStore() *Store {
	return &Store{Service: DefaultService}
}

func (s *Store) service() string {
	if s.Service == "" {
		return DefaultService
	}
	return s.Service
}

// Get returns the API key stored for profile.
func (s *Store) Get(profile string) (string, error) {
	key, err := gokeyring.Get(s.service(), user(profile))
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", fmt.Errorf("no API key stored for profile %q: %w", user(profile), agenticflow.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("keychain: %w", err)
	}
	return key, nil
}

// Set stores apiKey for profile, replacing any previous key.
func (s *Store) Set(profile, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("empty API key: %w", agenticflow.ErrValidation)
	}
	if err := gokeyring.Set(s.service(), user(profile), apiKey); err != nil {
		return fmt.Errorf("keychain: %w", err)
	}
	return nil
}

// Delete removes the key stored for profile.
func (s *Store) Delete(profile string) error {
	err := gokeyring.Delete(s.service(), user(profile))
	if errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("no API key stored for profile %q: %w", user(profile), agenticflow.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("keychain: %w", err)
	}
	return nil
}

func user(profile string) string {
	if profile == "" {
		return agenticflow.DefaultProfile
	}
	return profile
}
