package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	repo "github.com/oksasatya/local-business-directory/internal/domain/repository"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

// Identity is what the identity provider asserts about a signed-in user.
type Identity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// IdentityProvider runs the authorization-code login against a third party.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

type AuthService struct {
	Users      repo.UserRepository
	Provider   IdentityProvider
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	SessionTTL time.Duration
	Logger     *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

const loginStateTTL = 10 * time.Minute

func loginStateKey(state string) string {
	return "login:state:" + state
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAuthService(users repo.UserRepository, provider IdentityProvider, jwt *helpers.JWTManager, rdb *redis.Client, sessionTTL time.Duration, logger *logrus.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{Users: users, Provider: provider, JWT: jwt, Redis: rdb, SessionTTL: sessionTTL, Logger: logger}
}

type loginState struct {
	ReturnTo  string `json:"return_to"`
	CreatedAt string `json:"created_at"`
}

// BeginLogin stores a one-time state value and returns the provider URL to
// redirect the browser to.
func (s *AuthService) BeginLogin(ctx context.Context, returnTo string) (string, error) {
	if s.Provider == nil {
		return "", errors.New("identity provider not configured")
	}
	state, err := helpers.RandomToken(32)
	if err != nil {
		return "", err
	}
	st := loginState{ReturnTo: returnTo, CreatedAt: nowRFC3339()}
	if err := helpers.RedisSetJSON(ctx, s.Redis, loginStateKey(state), st, loginStateTTL); err != nil {
		return "", fmt.Errorf("store login state: %w", err)
	}
	return s.Provider.AuthCodeURL(state), nil
}

// CompleteLogin consumes the state, exchanges the code, upserts the user and
// opens a session. It returns the post-login redirect target.
func (s *AuthService) CompleteLogin(ctx context.Context, state, code string) (*entity.User, TokenPair, string, error) {
	if s.Provider == nil {
		return nil, TokenPair{}, "", errors.New("identity provider not configured")
	}
	var st loginState
	ok, err := helpers.RedisTakeJSON(ctx, s.Redis, loginStateKey(state), &st)
	if err != nil {
		return nil, TokenPair{}, "", fmt.Errorf("load login state: %w", err)
	}
	if !ok || state == "" {
		return nil, TokenPair{}, "", ErrInvalidState
	}

	id, err := s.Provider.Exchange(ctx, code)
	if err != nil {
		return nil, TokenPair{}, "", fmt.Errorf("exchange code: %w", err)
	}
	if id == nil || id.Subject == "" {
		return nil, TokenPair{}, "", errors.New("identity provider returned no subject")
	}

	u, err := s.UpsertIdentity(ctx, *id)
	if err != nil {
		return nil, TokenPair{}, "", err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, "", err
	}
	return u, pair, st.ReturnTo, nil
}

// UpsertIdentity records the latest profile the provider reported.
func (s *AuthService) UpsertIdentity(ctx context.Context, id Identity) (*entity.User, error) {
	u := &entity.User{
		ID:              id.Subject,
		Email:           id.Email,
		FirstName:       id.FirstName,
		LastName:        id.LastName,
		ProfileImageURL: id.Picture,
	}
	if err := s.Users.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", id.Subject, err)
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.signPair(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	fields := map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"name":       u.DisplayName(),
		"sid":        sid,
		"created_at": nowRFC3339(),
	}
	key := helpers.SessionKey(u.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return TokenPair{}, fmt.Errorf("store session: %w", err)
	}
	return pair, nil
}

// Refresh validates the refresh token against the live session and rotates
// both the session id and the token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidSession
	}
	key := helpers.SessionKey(claims.UserID)
	data, err := s.Redis.HGetAll(ctx, key).Result()
	if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
		return TokenPair{}, "", ErrInvalidSession
	}

	sid := uuid.NewString()
	pair, err := s.signPair(claims.UserID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"sid":        sid,
		"updated_at": nowRFC3339(),
	})
	pipe.Expire(ctx, key, s.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return TokenPair{}, "", fmt.Errorf("rotate session: %w", err)
	}
	return pair, claims.UserID, nil
}

// Logout drops the user's session; outstanding tokens stop working at once.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return helpers.RedisDel(ctx, s.Redis, helpers.SessionKey(userID))
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}

func (s *AuthService) signPair(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
