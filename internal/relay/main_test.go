// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/goleak"

	"github.com/tomtom215/rocksky-relay/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeConn records every frame queued to it.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.frames = append(c.frames, append([]byte(nil), msg...))
	return true
}

func (c *fakeConn) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

// decoded returns every queued frame decoded as a JSON object.
func (c *fakeConn) decoded(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("frame %q is not a JSON object: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

// staticVerifier maps tokens to accounts.
type staticVerifier map[string]string

var errBadToken = errors.New("bad token")

func (v staticVerifier) Verify(token string) (string, error) {
	if account, ok := v[token]; ok {
		return account, nil
	}
	return "", errBadToken
}

// fakeStore is an in-memory TrackStore that counts calls.
type fakeStore struct {
	mu         sync.Mutex
	tracks     map[string]*models.Track
	loved      map[string]bool // account + "|" + fingerprint
	err        error
	trackCalls atomic.Int32
	lovedCalls atomic.Int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{tracks: map[string]*models.Track{}, loved: map[string]bool{}}
}

func (s *fakeStore) addTrack(t *models.Track) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.SHA256 = models.Fingerprint(t.Title, t.Artist, t.Album)
	s.tracks[t.SHA256] = t
	return t.SHA256
}

func (s *fakeStore) love(accountID, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loved[accountID+"|"+fingerprint] = true
}

func (s *fakeStore) TrackByFingerprint(_ context.Context, fingerprint string) (*models.Track, error) {
	s.trackCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks[fingerprint], nil
}

func (s *fakeStore) IsLoved(_ context.Context, accountID, fingerprint string) (bool, error) {
	s.lovedCalls.Add(1)
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loved[accountID+"|"+fingerprint], nil
}
