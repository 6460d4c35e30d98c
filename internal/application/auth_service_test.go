package application

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/local-business-directory/internal/infrastructure/memory"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

type fakeProvider struct {
	identity *Identity
	err      error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	if code != "good-code" {
		return nil, errors.New("bad code")
	}
	return p.identity, nil
}

func newAuthService(t *testing.T, provider IdentityProvider) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwt := helpers.NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour)
	svc := NewAuthService(memory.NewStore().Users(), provider, jwt, rdb, time.Hour, helpers.NewDiscardLogger())
	return svc, mr
}

func stateFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestLoginFlow_UpsertsUserAndOpensSession(t *testing.T) {
	provider := &fakeProvider{identity: &Identity{Subject: "sub-1", Email: "ada@example.com", FirstName: "Ada", LastName: "L"}}
	svc, mr := newAuthService(t, provider)
	ctx := context.Background()

	redirect, err := svc.BeginLogin(ctx, "/profile")
	require.NoError(t, err)
	state := stateFrom(t, redirect)

	u, pair, returnTo, err := svc.CompleteLogin(ctx, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "/profile", returnTo)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", claims.UserID)
	assert.Equal(t, claims.SessionID, mr.HGet(helpers.SessionKey("sub-1"), "sid"))

	// state is single use
	_, _, _, err = svc.CompleteLogin(ctx, state, "good-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteLogin_UnknownState(t *testing.T) {
	svc, _ := newAuthService(t, &fakeProvider{})
	_, _, _, err := svc.CompleteLogin(context.Background(), "forged", "good-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteLogin_ExchangeFailure(t *testing.T) {
	svc, _ := newAuthService(t, &fakeProvider{err: errors.New("idp down")})
	ctx := context.Background()
	redirect, err := svc.BeginLogin(ctx, "/")
	require.NoError(t, err)

	_, _, _, err = svc.CompleteLogin(ctx, stateFrom(t, redirect), "good-code")
	assert.Error(t, err)
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, mr := newAuthService(t, nil)
	ctx := context.Background()

	u, err := svc.UpsertIdentity(ctx, Identity{Subject: "u1"})
	require.NoError(t, err)
	pair, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)
	oldSID := mr.HGet(helpers.SessionKey("u1"), "sid")

	next, uid, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.NotEqual(t, oldSID, mr.HGet(helpers.SessionKey("u1"), "sid"))

	// the old refresh token is bound to the rotated-out session
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = svc.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestLogout_DropsSession(t *testing.T) {
	svc, mr := newAuthService(t, nil)
	ctx := context.Background()

	u, err := svc.UpsertIdentity(ctx, Identity{Subject: "u1"})
	require.NoError(t, err)
	pair, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "u1"))
	assert.False(t, mr.Exists(helpers.SessionKey("u1")))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestCurrentUser(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CurrentUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpsertIdentity(ctx, Identity{Subject: "u1", Email: "u1@example.com"})
	require.NoError(t, err)
	u, err := svc.CurrentUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", u.Email)
}
