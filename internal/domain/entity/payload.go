package entity

import (
	"encoding/json"
	"time"

	"github.com/languelink/identity-core/internal/domain/repository"
)

// Payload is the persisted representation of a single protocol artifact
// (authorization code, token, session, client) under a named collection.
// GrantID links sibling artifacts issued under the same authorization
// grant. ExpiresAt and ConsumedAt are unix milliseconds.
type Payload struct {
	Header     string `json:"header"`
	Payload    string `json:"payload"`
	Signature  string `json:"signature"`
	GrantID    string `json:"grantId,omitempty"`
	ExpiresAt  int64  `json:"expiresAt,omitempty"`
	ConsumedAt int64  `json:"consumedAt,omitempty"`
}

// Expired reports whether the payload's TTL has passed at the given
// instant. A zero ExpiresAt means the payload does not expire.
func (p Payload) Expired(now time.Time) bool {
	return p.ExpiresAt != 0 && now.UnixMilli() >= p.ExpiresAt
}

// Consumed reports whether the payload has been marked consumed.
func (p Payload) Consumed() bool {
	return p.ConsumedAt != 0
}

// Document renders the payload as a storable document.
func (p Payload) Document() (repository.Document, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var doc repository.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// PayloadFromDocument decodes a stored payload document.
func PayloadFromDocument(doc repository.Document) (Payload, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
