package cloudsync

import (
	"strings"

	"taskreward/internal/persist"
)

// TokenStore keeps the bearer token next to the rest of the local data.
type TokenStore struct {
	p persist.Persister
}

func NewTokenStore(p persist.Persister) *TokenStore {
	return &TokenStore{p: p}
}

func (t *TokenStore) Token() (string, error) {
	var tok string
	ok, err := t.p.Load(persist.KeyAuthToken, &tok)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

func (t *TokenStore) Save(token string) error {
	return t.p.Save(persist.KeyAuthToken, strings.TrimSpace(token))
}

func (t *TokenStore) Clear() error {
	return t.p.Delete(persist.KeyAuthToken)
}
