package token

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Pair is a freshly issued access/refresh credential pair.
type Pair struct {
	Access  string
	Refresh string
}

type Issuer struct {
	codec      *Codec
	store      RefreshStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(codec *Codec, store RefreshStore, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Issuer{codec: codec, store: store, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// Issue mints a fresh pair for the user under a brand-new token id and
// persists the matching refresh record. On any failure no credentials are
// returned at all.
func (i *Issuer) Issue(ctx context.Context, userID string) (Pair, error) {
	tokenID := uuid.NewString()

	access, err := i.codec.Sign(userID, "", PurposeAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := i.codec.Sign(userID, tokenID, PurposeRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}

	if err := i.store.Create(ctx, tokenID, userID); err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}
