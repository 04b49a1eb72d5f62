package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLive(t *testing.T) {
	now := time.Now()

	s := Session{RefreshExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Live(now))
	assert.False(t, s.Revoked())

	// Past the refresh window.
	assert.False(t, s.Live(now.Add(2*time.Hour)))
	// Exactly at expiry counts as dead.
	assert.False(t, s.Live(s.RefreshExpiresAt))

	revokedAt := now
	s.RevokedAt = &revokedAt
	assert.True(t, s.Revoked())
	assert.False(t, s.Live(now))
}
