// Package banklink talks to the bank-link aggregator (Plaid).
package banklink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

type Exchange struct {
	ItemID      string
	AccessToken string
}

type Client interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (Exchange, error)
}

// Stub hands out deterministic tokens. It stands in for Plaid when no
// credentials are configured.
type Stub struct{}

func (Stub) CreateLinkToken(_ context.Context, userID string) (string, error) {
	return "link-sandbox-" + digest(userID), nil
}

func (Stub) ExchangePublicToken(_ context.Context, publicToken string) (Exchange, error) {
	d := digest(publicToken)
	return Exchange{ItemID: "item-sandbox-" + d, AccessToken: "access-sandbox-" + d}, nil
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
