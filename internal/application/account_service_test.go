package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/languelink/identity-core/internal/domain/entity"
	"github.com/languelink/identity-core/internal/infrastructure/memstore"
	"github.com/languelink/identity-core/pkg/validation"
)

func newTestService() *AccountService {
	return NewAccountService(memstore.New(), nil, nil, "", nil)
}

func mustCredentials(t *testing.T, email, password string) entity.Credentials {
	t.Helper()
	creds, err := entity.ParseCredentials(email, password)
	require.NoError(t, err)
	return creds
}

func TestResolveAccountIDIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	email, err := validation.ParseEmail("a@b.com")
	require.NoError(t, err)

	first, err := s.ResolveAccountID(ctx, email)
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9_~]{21}$`, first.String())

	second, err := s.ResolveAccountID(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCredentialRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	creds := mustCredentials(t, "a@b.com", "Passw0rd")

	account, err := s.ResolveOrCreateAccount(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, creds.Email, account.Email)
	assert.Empty(t, account.Username)
	assert.False(t, account.EmailVerified)
	assert.GreaterOrEqual(t, account.UpdatedAt, account.RegisteredAt)
	assert.Regexp(t, `^\$2[aby]?\$\d+\$[./A-Za-z0-9]{53}$`, account.PasswordHash.String())

	ok, err := s.Verify(account, creds)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(account, mustCredentials(t, "a@b.com", "Wrong123"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Verify(account, mustCredentials(t, "x@y.com", "Passw0rd"))
	require.Error(t, err)
	assert.True(t, validation.IsError(err), "identity mismatch must be a validation error")
}

func TestResolveOrCreateAccountReturnsExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	creds := mustCredentials(t, "a@b.com", "Passw0rd")

	first, err := s.ResolveOrCreateAccount(ctx, creds)
	require.NoError(t, err)
	second, err := s.ResolveOrCreateAccount(ctx, creds)
	require.NoError(t, err)

	assert.Equal(t, first.AccountID, second.AccountID)
	assert.Equal(t, first.RegisteredAt, second.RegisteredAt)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
}

func TestCreationOnDemandByID(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	id, err := validation.ParseAccountID("V1StGXR8_Z5jdHi6B~myT")
	require.NoError(t, err)

	_, ok, err := s.FindAccount(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	created, err := s.FindBy(ctx, ByAccountID{ID: id})
	require.NoError(t, err)
	assert.Equal(t, id, created.AccountID)
	assert.Empty(t, created.Username)
	assert.False(t, created.EmailVerified)

	found, ok, err := s.FindAccount(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.UserInfo, found.UserInfo)
}

func TestFindByEmailCreatesMappingAndAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	email, err := validation.ParseEmail("new@b.com")
	require.NoError(t, err)

	account, err := s.FindBy(ctx, ByEmail{Email: email})
	require.NoError(t, err)

	id, err := s.ResolveAccountID(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, id, account.AccountID)
}

func TestFindByRejectsUnknownLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.FindBy(ctx, nil)
	require.Error(t, err)
	assert.True(t, validation.IsError(err))

	_, err = s.FindBy(ctx, ByUserInfo{UserInfo: entity.UserInfo{AccountID: "bogus"}})
	require.Error(t, err)
	assert.True(t, validation.IsError(err))
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	account, err := s.ResolveOrCreateAccount(ctx, mustCredentials(t, "a@b.com", "Passw0rd"))
	require.NoError(t, err)

	before := account.UpdatedAt
	username := "alice"
	require.NoError(t, s.Update(ctx, account, entity.UserInfoPartial{Username: &username}))
	assert.Greater(t, account.UpdatedAt, before)
	assert.Equal(t, "alice", account.Username)

	mid := account.UpdatedAt
	verified := true
	require.NoError(t, s.Update(ctx, account, entity.UserInfoPartial{EmailVerified: &verified}))
	assert.Greater(t, account.UpdatedAt, mid)

	found, ok, err := s.FindAccount(ctx, account.AccountID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", found.Username)
	assert.True(t, found.EmailVerified)
}

func TestRegisterRebindsPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	account, err := s.ResolveOrCreateAccount(ctx, mustCredentials(t, "a@b.com", "Passw0rd"))
	require.NoError(t, err)

	require.NoError(t, s.Register(ctx, account, mustCredentials(t, "a@b.com", "NewPass1")))

	ok, err := s.Verify(account, mustCredentials(t, "a@b.com", "NewPass1"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Verify(account, mustCredentials(t, "a@b.com", "Passw0rd"))
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Register(ctx, account, mustCredentials(t, "x@y.com", "NewPass1"))
	assert.True(t, validation.IsError(err))
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	account, err := s.ResolveOrCreateAccount(ctx, mustCredentials(t, "a@b.com", "Passw0rd"))
	require.NoError(t, err)

	result, ok, err := s.FindByID(ctx, account.AccountID, map[string]any{"kind": "AccessToken"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, account.AccountID, result.AccountID)

	claims := result.Claims("id_token", "openid")
	assert.Equal(t, account.AccountID.String(), claims["sub"])
	assert.Equal(t, "a@b.com", claims["email"])
	assert.NotContains(t, claims, "passwordHash")

	unknown, err := validation.ParseAccountID("___~~~___~~~___~~~___")
	require.NoError(t, err)
	_, ok, err = s.FindByID(ctx, unknown, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
