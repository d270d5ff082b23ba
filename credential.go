package agenticflow

// DefaultProfile is the credential profile used when none is named.
const DefaultProfile = "default"

// CredentialStore persists API keys per named profile. Get returns an
// error wrapping [ErrNotFound] when the profile has no stored key.
type CredentialStore interface {
	Get(profile string) (string, error)
	Set(profile, apiKey string) error
	Delete(profile string) error
}
