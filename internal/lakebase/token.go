package lakebase

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// Credentials are valid for about an hour; assume 55 minutes when the
	// control plane does not return an expiry.
	assumedTokenLifetime = 55 * time.Minute
	// Refresh this long before the token actually expires.
	refreshSkew = 5 * time.Minute
)

// CredentialManager hands out database tokens for one endpoint, minting a
// new one only when the cached token is near expiry.
type CredentialManager struct {
	client       *Client
	endpointName string

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	// now is swappable so tests can control the clock.
	now func() time.Time
}

// NewCredentialManager returns a manager for the given endpoint.
func NewCredentialManager(client *Client, endpointName string) *CredentialManager {
	return &CredentialManager{
		client:       client,
		endpointName: endpointName,
		now:          time.Now,
	}
}

// Token returns a valid database token, reusing the cached one until it is
// within the refresh skew of expiring.
func (m *CredentialManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiresAt.Add(-refreshSkew)) {
		return m.token, nil
	}

	cred, err := m.client.GenerateDatabaseCredential(ctx, m.endpointName)
	if err != nil {
		return "", fmt.Errorf("generate database credential: %w", err)
	}
	m.token = cred.Token
	if cred.ExpireTime.IsZero() {
		m.expiresAt = m.now().Add(assumedTokenLifetime)
	} else {
		m.expiresAt = cred.ExpireTime
	}
	return m.token, nil
}
