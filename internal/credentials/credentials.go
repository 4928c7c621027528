// Package credentials acquires and caches the temporary credentials used to
// sign log store queries.
//
// The query client depends only on the Provider interface; the STS
// assume-role implementation and a static implementation for tests live
// side by side.
package credentials

import (
	"context"
	"fmt"
	"time"
)

// Credentials is one set of (possibly temporary) access credentials.
type Credentials struct {
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
	Expiration      time.Time
}

// expiryMargin is how long before the actual expiration cached credentials
// are considered stale, to absorb clock skew and request latency.
const expiryMargin = 5 * time.Minute

// Valid reports whether the credentials are complete and not within the
// expiry margin. Credentials with a zero Expiration never expire.
func (c Credentials) Valid() bool {
	if c.AccessKeyID == "" || c.AccessKeySecret == "" {
		return false
	}
	if c.Expiration.IsZero() {
		return true
	}
	return time.Now().Add(expiryMargin).Before(c.Expiration)
}

// Provider yields valid credentials, refreshing and caching as needed.
type Provider interface {
	GetValidCredentials(ctx context.Context) (Credentials, error)
}

// CredentialError indicates that credential acquisition failed. It is fatal
// for the current analysis call; the caller decides whether to retry.
type CredentialError struct {
	Op  string
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential %s failed: %v", e.Op, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// StaticProvider returns a fixed set of credentials. Used for tests and for
// long-lived access keys without role assumption.
type StaticProvider struct {
	Creds Credentials
}

// GetValidCredentials returns the fixed credentials, or a CredentialError
// when they are incomplete or expired.
func (p *StaticProvider) GetValidCredentials(_ context.Context) (Credentials, error) {
	if !p.Creds.Valid() {
		return Credentials{}, &CredentialError{
			Op:  "static lookup",
			Err: fmt.Errorf("static credentials are incomplete or expired"),
		}
	}
	return p.Creds, nil
}
