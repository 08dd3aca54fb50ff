package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/languelink/identity-core/internal/domain/entity"
	"github.com/languelink/identity-core/internal/domain/repository"
	"github.com/languelink/identity-core/pkg/helpers"
)

// clientTTL pins the lifetime of client registrations regardless of the
// TTL the protocol layer asks for.
const clientTTL = 24 * time.Hour

// clientCollection is the adapter name that gets the pinned TTL.
const clientCollection = "Client"

// GrantAdapter persists one kind of protocol artifact (access token,
// authorization code, session, client) under a named collection. All
// adapters share the same store; artifacts of one authorization grant
// are linked through a grant index so revocation cascades across
// collections without scanning them.
type GrantAdapter struct {
	Name   string
	Store  repository.Store
	Logger *logrus.Logger
	Events *helpers.RabbitPublisher
}

func NewGrantAdapter(name string, store repository.Store, logger *logrus.Logger, events *helpers.RabbitPublisher) *GrantAdapter {
	return &GrantAdapter{Name: name, Store: store, Logger: logger, Events: events}
}

func (a *GrantAdapter) key(id string) string {
	return a.Name + ":" + id
}

func grantKeyFor(grantID string) string {
	return "grant:" + grantID
}

// Connect is the startup lifecycle hook invoked once by the protocol
// layer before the adapter is used.
func (a *GrantAdapter) Connect(ctx context.Context) error {
	if a.Logger != nil {
		a.Logger.WithField("collection", a.Name).Debug("adapter connect")
	}
	return a.Store.Ping(ctx)
}

// Upsert persists the payload under <name>:<id> with expiresAt set to
// now + expiresIn, and records the key in the grant-family index when
// the payload carries a grant id. Index entries are keyed by fresh
// random ids so concurrent upserts under the same grant merge instead
// of clobbering each other.
func (a *GrantAdapter) Upsert(ctx context.Context, id string, payload entity.Payload, expiresIn time.Duration) error {
	if a.Name == clientCollection {
		expiresIn = clientTTL
	}
	payload.ExpiresAt = time.Now().Add(expiresIn).UnixMilli()
	key := a.key(id)
	if payload.GrantID != "" {
		index := repository.Document{uuid.NewString(): key}
		if err := a.Store.Set(ctx, repository.CollectionGrants, grantKeyFor(payload.GrantID), index); err != nil {
			return err
		}
	}
	doc, err := payload.Document()
	if err != nil {
		return err
	}
	return a.Store.Set(ctx, repository.CollectionPayloads, key, doc)
}

// Find loads the payload. Expiry is enforced on read: a payload past its
// expiresAt is reported absent whether or not the store pruned it.
func (a *GrantAdapter) Find(ctx context.Context, id string) (*entity.Payload, bool, error) {
	doc, ok, err := a.Store.Get(ctx, repository.CollectionPayloads, a.key(id))
	if err != nil || !ok {
		return nil, false, err
	}
	payload, err := entity.PayloadFromDocument(doc)
	if err != nil {
		return nil, false, err
	}
	if payload.Expired(time.Now()) {
		return nil, false, nil
	}
	return &payload, true, nil
}

// Consume marks the payload consumed without deleting it, so a replayed
// one-time artifact can be detected. A second call is a no-op.
func (a *GrantAdapter) Consume(ctx context.Context, id string) error {
	doc, ok, err := a.Store.Get(ctx, repository.CollectionPayloads, a.key(id))
	if err != nil || !ok {
		return err
	}
	payload, err := entity.PayloadFromDocument(doc)
	if err != nil {
		return err
	}
	if payload.Consumed() {
		return nil
	}
	mark := repository.Document{"consumedAt": time.Now().UnixMilli()}
	return a.Store.Set(ctx, repository.CollectionPayloads, a.key(id), mark)
}

// Destroy deletes the payload and, when it belongs to a grant family,
// every sibling payload recorded in the family's index. Deletes are
// independent per key: a failure partway leaves the family partially
// revoked and is reported, not retried.
func (a *GrantAdapter) Destroy(ctx context.Context, id string) error {
	key := a.key(id)
	doc, ok, err := a.Store.Get(ctx, repository.CollectionPayloads, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	payload, err := entity.PayloadFromDocument(doc)
	if err != nil {
		return err
	}
	errs := []error{a.Store.Del(ctx, repository.CollectionPayloads, key)}
	if payload.GrantID != "" {
		grantKey := grantKeyFor(payload.GrantID)
		index, ok, err := a.Store.Get(ctx, repository.CollectionGrants, grantKey)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			for _, v := range index {
				sibling, ok := v.(string)
				if !ok || sibling == key {
					continue
				}
				errs = append(errs, a.Store.Del(ctx, repository.CollectionPayloads, sibling))
			}
			errs = append(errs, a.Store.Del(ctx, repository.CollectionGrants, grantKey))
		}
		if a.Logger != nil {
			a.Logger.WithFields(logrus.Fields{"collection": a.Name, "grant_id": payload.GrantID}).Info("grant family revoked")
		}
		publishEvent(ctx, a.Events, a.Logger, EventGrantRevoked, logrus.Fields{"grant_id": payload.GrantID, "collection": a.Name})
	}
	return errors.Join(errs...)
}
