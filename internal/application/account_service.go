package application

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/languelink/identity-core/internal/domain/entity"
	"github.com/languelink/identity-core/internal/domain/repository"
	"github.com/languelink/identity-core/pkg/helpers"
	"github.com/languelink/identity-core/pkg/validation"
)

// placeholderEmail fills the profile of an account created on demand by
// id, where no address is known yet. It stays unverified until an update
// binds a real one.
const placeholderEmail = validation.Email("unknown@example.com")

// AccountService resolves end-user identity against the document store.
// Accounts are created lazily: the first resolution of an unseen email
// or id materializes a default profile. ES and Events are optional; when
// nil the service skips indexing and event publishing.
type AccountService struct {
	Store           repository.Store
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESAccountsIndex string
	Events          *helpers.RabbitPublisher
}

func NewAccountService(store repository.Store, logger *logrus.Logger, es *elasticsearch.Client, esAccountsIndex string, events *helpers.RabbitPublisher) *AccountService {
	return &AccountService{
		Store:           store,
		Logger:          logger,
		ES:              es,
		ESAccountsIndex: esAccountsIndex,
		Events:          events,
	}
}

// Lookup selects a resolution path for FindBy. It is a closed set of
// variants; each is validated independently before any I/O.
type Lookup interface {
	isLookup()
}

// ByEmail resolves through the email-to-id mapping.
type ByEmail struct {
	Email validation.Email
}

// ByAccountID loads the profile directly, creating a default one on miss.
type ByAccountID struct {
	ID validation.AccountID
}

// ByCredentials resolves the email and synthesizes a profile with a
// fresh password hash when none exists.
type ByCredentials struct {
	Credentials entity.Credentials
}

// ByUserInfo persists the given profile as-is (bumping updated_at).
type ByUserInfo struct {
	UserInfo entity.UserInfo
}

func (ByEmail) isLookup()       {}
func (ByAccountID) isLookup()   {}
func (ByCredentials) isLookup() {}
func (ByUserInfo) isLookup()    {}

// ResolveAccountID returns the account id mapped to the email, creating
// the mapping on first resolution.
//
// Two concurrent first resolutions of the same email may each write a
// different id; the store's merge policy decides the survivor and the
// losing id is orphaned. That hazard is accepted here, not locked away.
func (s *AccountService) ResolveAccountID(ctx context.Context, email validation.Email) (validation.AccountID, error) {
	doc, ok, err := s.Store.Get(ctx, repository.CollectionEmails, email.String())
	if err != nil {
		return "", err
	}
	if !ok {
		raw, err := helpers.NewAccountID()
		if err != nil {
			return "", fmt.Errorf("generate account id: %w", err)
		}
		id, err := validation.ParseAccountID(raw)
		if err != nil {
			return "", err
		}
		mapping := repository.Document{"accountId": id.String()}
		if err := s.Store.Set(ctx, repository.CollectionEmails, email.String(), mapping); err != nil {
			return "", err
		}
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"email": email.String(), "account_id": id.String()}).Debug("email mapping created")
		}
		return id, nil
	}
	stored, _ := doc["accountId"].(string)
	return validation.ParseAccountID(stored)
}

// FindAccount loads the profile for the id. It does not create.
func (s *AccountService) FindAccount(ctx context.Context, id validation.AccountID) (*entity.Account, bool, error) {
	doc, ok, err := s.Store.Get(ctx, repository.CollectionAccounts, id.String())
	if err != nil || !ok {
		return nil, false, err
	}
	info, err := entity.UserInfoFromDocument(doc)
	if err != nil {
		return nil, false, err
	}
	return &entity.Account{UserInfo: info}, true, nil
}

// ResolveOrCreateAccount resolves the credentials' email to an account,
// synthesizing and persisting a default profile when none exists yet.
func (s *AccountService) ResolveOrCreateAccount(ctx context.Context, creds entity.Credentials) (*entity.Account, error) {
	id, err := s.ResolveAccountID(ctx, creds.Email)
	if err != nil {
		return nil, err
	}
	account, ok, err := s.FindAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		return account, nil
	}
	hash, err := generateHashOf(creds.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	info := entity.UserInfo{
		AccountID:     id,
		Username:      creds.Username,
		Email:         creds.Email,
		EmailVerified: false,
		UpdatedAt:     now,
		RegisteredAt:  now,
		PasswordHash:  hash,
	}
	account = &entity.Account{UserInfo: info}
	if err := s.saveAccount(ctx, account); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithField("account_id", id.String()).Info("account created")
	}
	s.publish(ctx, EventAccountCreated, logrus.Fields{"account_id": id.String(), "email": creds.Email.String()})
	return account, nil
}

// Verify checks the credentials against the account. A mismatched email
// is an identity mismatch and fails validation; a wrong password just
// returns false.
func (s *AccountService) Verify(account *entity.Account, creds entity.Credentials) (bool, error) {
	if account.Email != creds.Email {
		return false, validation.Errorf("email", "addresses don't match")
	}
	if account.PasswordHash == "" {
		return false, nil
	}
	return helpers.CompareHashAndPassword(account.PasswordHash.String(), string(creds.Password)), nil
}

// Register binds a fresh hash of the supplied password to the account.
func (s *AccountService) Register(ctx context.Context, account *entity.Account, creds entity.Credentials) error {
	if account.Email != creds.Email {
		return validation.Errorf("email", "addresses don't match")
	}
	hash, err := generateHashOf(creds.Password)
	if err != nil {
		return err
	}
	return s.Update(ctx, account, entity.UserInfoPartial{PasswordHash: &hash})
}

// Update merges the partial fields into the profile, bumps updated_at
// and persists the full document.
func (s *AccountService) Update(ctx context.Context, account *entity.Account, partial entity.UserInfoPartial) error {
	if partial.Username != nil {
		account.Username = *partial.Username
	}
	if partial.Email != nil {
		account.Email = *partial.Email
	}
	if partial.EmailVerified != nil {
		account.EmailVerified = *partial.EmailVerified
	}
	if partial.PasswordHash != nil {
		account.PasswordHash = *partial.PasswordHash
	}
	return s.saveAccount(ctx, account)
}

// FindBy dispatches over the lookup variants. An unrecognized variant is
// a programming error and fails before any I/O.
func (s *AccountService) FindBy(ctx context.Context, lookup Lookup) (*entity.Account, error) {
	switch l := lookup.(type) {
	case ByEmail:
		id, err := s.ResolveAccountID(ctx, l.Email)
		if err != nil {
			return nil, err
		}
		return s.FindBy(ctx, ByAccountID{ID: id})
	case ByAccountID:
		account, ok, err := s.FindAccount(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			if s.Logger != nil {
				s.Logger.WithField("account_id", l.ID.String()).Debug("account found")
			}
			return account, nil
		}
		if s.Logger != nil {
			s.Logger.WithField("account_id", l.ID.String()).Info("account not found, creating")
		}
		now := time.Now().UnixMilli()
		account = &entity.Account{UserInfo: entity.UserInfo{
			AccountID:     l.ID,
			Username:      "",
			Email:         placeholderEmail,
			EmailVerified: false,
			UpdatedAt:     now,
			RegisteredAt:  now,
		}}
		if err := s.saveAccount(ctx, account); err != nil {
			return nil, err
		}
		s.publish(ctx, EventAccountCreated, logrus.Fields{"account_id": l.ID.String()})
		return account, nil
	case ByCredentials:
		return s.ResolveOrCreateAccount(ctx, l.Credentials)
	case ByUserInfo:
		if err := l.UserInfo.Validate(); err != nil {
			return nil, err
		}
		account := &entity.Account{UserInfo: l.UserInfo}
		if err := s.saveAccount(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	default:
		return nil, validation.Errorf("lookup", "expected email, account id, credentials or user info")
	}
}

// AccountClaims is the shape returned to the protocol layer's account
// lookup callback.
type AccountClaims struct {
	AccountID validation.AccountID
	Claims    func(use, scope string) map[string]any
}

// FindByID is the account lookup callback consumed by the protocol
// layer. Claims returns the subject claim plus the full profile;
// use/scope filtering, if any, is the protocol layer's responsibility.
func (s *AccountService) FindByID(ctx context.Context, id validation.AccountID, token map[string]any) (*AccountClaims, bool, error) {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": id.String(), "token": token}).Debug("findById callback")
	}
	account, ok, err := s.FindAccount(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}
	info := account.UserInfo
	return &AccountClaims{
		AccountID: id,
		Claims: func(use, scope string) map[string]any {
			return map[string]any{
				"sub":            id.String(),
				"accountId":      info.AccountID.String(),
				"username":       info.Username,
				"email":          info.Email.String(),
				"email_verified": info.EmailVerified,
				"updated_at":     info.UpdatedAt,
				"registered_at":  info.RegisteredAt,
			}
		},
	}, true, nil
}

// saveAccount bumps updated_at and writes the full profile document,
// then feeds the nil-safe search index.
func (s *AccountService) saveAccount(ctx context.Context, account *entity.Account) error {
	now := time.Now().UnixMilli()
	if now <= account.UpdatedAt {
		now = account.UpdatedAt + 1
	}
	account.UpdatedAt = now
	doc, err := account.Document()
	if err != nil {
		return err
	}
	if err := s.Store.Set(ctx, repository.CollectionAccounts, account.AccountID.String(), doc); err != nil {
		return err
	}
	_ = s.indexAccount(ctx, account)
	return nil
}

func generateHashOf(password validation.PasswordRaw) (validation.PasswordHash, error) {
	raw, err := helpers.HashPassword(string(password))
	if err != nil {
		return "", err
	}
	return validation.ParsePasswordHash(raw)
}
