package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/timberline-erp/timberline/internal/shared"
)

// TokenStore keeps issued bearer tokens with a TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore builds a Redis-backed token store.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func tokenKey(token string) string {
	return "auth:token:" + token
}

// Issue stores the principal under a fresh opaque token.
func (s *TokenStore) Issue(ctx context.Context, p shared.Principal) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenKey(token), data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the principal for a token, refreshing its TTL.
func (s *TokenStore) Resolve(ctx context.Context, token string) (shared.Principal, error) {
	data, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return shared.Principal{}, ErrTokenNotFound
	}
	if err != nil {
		return shared.Principal{}, err
	}
	var p shared.Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return shared.Principal{}, err
	}
	_ = s.client.Expire(ctx, tokenKey(token), s.ttl).Err()
	return p, nil
}

// Revoke drops the token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKey(token)).Err()
}

// AuditPort records security-relevant events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles authentication and user provisioning.
type Service struct {
	repo   Repository
	tokens *TokenStore
	audit  AuditPort
	now    func() time.Time
}

// NewService constructs the auth service.
func NewService(repo Repository, tokens *TokenStore, audit AuditPort) *Service {
	return &Service{repo: repo, tokens: tokens, audit: audit, now: time.Now}
}

// Authenticate verifies credentials and issues a bearer token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, "", shared.ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(ctx, shared.Principal{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		Role:      string(user.Role),
	})
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// ProvisionInput carries the fields needed to create a user.
type ProvisionInput struct {
	CompanyID  int64
	Email      string
	Password   string
	FullName   string
	Role       Role
	Department string
	Phone      string
}

// Provision creates a user identity and its role record in one transaction.
// A role-record failure rolls the identity back.
func (s *Service) Provision(ctx context.Context, actor *shared.Principal, input ProvisionInput) (User, error) {
	if actor == nil || Role(actor.Role) != RoleOwner {
		return User{}, shared.ErrForbidden
	}
	if !input.Role.IsValid() {
		return User{}, ErrInvalidRole
	}
	if len(input.Password) < 8 {
		return User{}, errors.New("auth: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user := User{
		CompanyID:    input.CompanyID,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		Department:   input.Department,
		Phone:        input.Phone,
		PasswordHash: string(hash),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertUser(ctx, user)
		if err != nil {
			return err
		}
		user.ID = id
		return tx.InsertRoleRecord(ctx, id, input.Role, input.Department)
	})
	if err != nil {
		return User{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "user.provision",
			Entity:   "user",
			EntityID: fmt.Sprintf("%d", user.ID),
			Meta:     map[string]any{"email": user.Email, "role": string(user.Role)},
			At:       s.now(),
		})
	}
	return user, nil
}
