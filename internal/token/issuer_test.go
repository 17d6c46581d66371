package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	records   map[string]string
	createErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]string)}
}

func (s *memStore) Create(_ context.Context, tokenID, userID string) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tokenID] = userID
	return nil
}

func (s *memStore) Consume(_ context.Context, tokenID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.records[tokenID]
	if !ok || owner != userID {
		return false, nil
	}
	delete(s.records, tokenID)
	return true, nil
}

func (s *memStore) Delete(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, tokenID)
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestIssuerIssuesPairAndPersistsRecord(t *testing.T) {
	codec := newTestCodec(t)
	store := newMemStore()
	issuer := NewIssuer(codec, store, time.Hour, 30*24*time.Hour)

	pair, err := issuer.Issue(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)
	assert.Equal(t, 1, store.len())

	accessClaims, err := codec.Verify(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "u1", accessClaims.UserID)
	assert.Equal(t, PurposeAccess, accessClaims.Purpose)

	refreshClaims, err := codec.Verify(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", refreshClaims.UserID)
	assert.Equal(t, PurposeRefresh, refreshClaims.Purpose)
	require.NotEmpty(t, refreshClaims.TokenID)

	owner, ok := store.records[refreshClaims.TokenID]
	require.True(t, ok)
	assert.Equal(t, "u1", owner)
}

func TestIssuerEveryPairIsFresh(t *testing.T) {
	codec := newTestCodec(t)
	store := newMemStore()
	issuer := NewIssuer(codec, store, time.Hour, 30*24*time.Hour)

	first, err := issuer.Issue(context.Background(), "u1")
	require.NoError(t, err)
	second, err := issuer.Issue(context.Background(), "u1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Refresh, second.Refresh)

	firstClaims, err := codec.DecodeUnverified(first.Refresh)
	require.NoError(t, err)
	secondClaims, err := codec.DecodeUnverified(second.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.TokenID, secondClaims.TokenID)
}

func TestIssuerNoPartialIssueOnStoreFailure(t *testing.T) {
	codec := newTestCodec(t)
	store := newMemStore()
	store.createErr = errors.New("store down")
	issuer := NewIssuer(codec, store, time.Hour, 30*24*time.Hour)

	pair, err := issuer.Issue(context.Background(), "u1")
	require.Error(t, err)
	assert.Empty(t, pair.Access)
	assert.Empty(t, pair.Refresh)
	assert.Equal(t, 0, store.len())
}
