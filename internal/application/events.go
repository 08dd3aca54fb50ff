package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/languelink/identity-core/internal/domain/entity"
	"github.com/languelink/identity-core/pkg/helpers"
)

// Lifecycle event types published for audit/notification consumers.
const (
	EventAccountCreated = "account.created"
	EventGrantRevoked   = "grant.revoked"
)

// publish emits a lifecycle event. Publishing is best-effort: a missing
// publisher or a broker failure never fails the triggering operation.
func (s *AccountService) publish(ctx context.Context, eventType string, fields logrus.Fields) {
	publishEvent(ctx, s.Events, s.Logger, eventType, fields)
}

func publishEvent(ctx context.Context, events *helpers.RabbitPublisher, logger *logrus.Logger, eventType string, fields logrus.Fields) {
	if events == nil {
		return
	}
	body := map[string]any{
		"type":        eventType,
		"occurred_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		body[k] = v
	}
	if err := events.PublishJSON(ctx, body); err != nil && logger != nil {
		logger.WithError(err).WithField("event", eventType).Warn("event publish failed")
	}
}

// indexAccount mirrors the profile into the search index so operators
// can look accounts up by email or username. Skipped when ES is not
// configured; failures are logged, never propagated.
func (s *AccountService) indexAccount(ctx context.Context, account *entity.Account) error {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"account_id":     account.AccountID.String(),
		"username":       account.Username,
		"email":          account.Email.String(),
		"email_verified": account.EmailVerified,
		"updated_at":     account.UpdatedAt,
		"registered_at":  account.RegisteredAt,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESAccountsIndex, DocumentID: account.AccountID.String(), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", account.AccountID.String()).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("account_id", account.AccountID.String()).Warn("es index response error")
	}
	return nil
}
