package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/resource-api/internal/auth"
	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/internal/events"
	"github.com/spec-kit/resource-api/internal/store"
	"github.com/spec-kit/resource-api/pkg/util"
)

// accountType is the store collection holding account documents. It is not
// exposed through the resource registry; password hashes never leave this
// service.
const accountType = "accounts"

// Account is the stored identity behind a principal.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	CreatedAt    string
}

// AuthService coordinates registration, login and logout. Login issues a
// credential through the configured strategy.
type AuthService struct {
	store      store.Store
	strategy   auth.Strategy
	events     events.Dispatcher
	iterations int
}

// NewAuthService builds the service. The events dispatcher may be nil.
func NewAuthService(st store.Store, strategy auth.Strategy, ev events.Dispatcher, pbkdf2Iterations int) *AuthService {
	return &AuthService{store: st, strategy: strategy, events: ev, iterations: pbkdf2Iterations}
}

// Register creates a new account. The supplied secret is hashed before it
// ever touches the store and is never logged.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*Account, error) {
	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.ValidRole(role) {
		return nil, util.NewInvalidArgument("unknown role")
	}

	taken, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, util.NewConflict("email already registered", "email")
	}

	hash, err := auth.HashSecret(password, s.iterations)
	if err != nil {
		return nil, util.NewInternal("hash_failure", err)
	}

	account := &Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.store.Put(ctx, accountType, account.ID, accountDoc(account)); err != nil {
		return nil, storeErr(err)
	}
	return account, nil
}

// Login verifies the secret against the stored hash and issues a credential
// for the resolved principal. Unknown email and wrong password are reported
// identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Account, auth.Credential, error) {
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, auth.Credential{}, err
	}
	if account == nil || !auth.VerifySecret(account.PasswordHash, password) {
		return nil, auth.Credential{}, util.NewUnauthenticated("invalid credentials")
	}

	credential, err := s.strategy.Issue(ctx, &domain.Principal{ID: account.ID, Role: account.Role})
	if err != nil {
		return nil, auth.Credential{}, util.NewInternal("issue_failure", err)
	}
	s.publish(ctx, events.EventLoginSucceeded, account.ID)
	return account, credential, nil
}

// Logout revokes the presented credential where the strategy supports it.
func (s *AuthService) Logout(ctx context.Context, principal *domain.Principal, credential string) error {
	if err := s.strategy.Revoke(ctx, credential); err != nil {
		return util.NewInternal("revoke_failure", err)
	}
	if principal != nil {
		s.publish(ctx, events.EventLogout, principal.ID)
	}
	return nil
}

// Lookup returns the account behind a principal id.
func (s *AuthService) Lookup(ctx context.Context, id string) (*Account, error) {
	doc, err := s.store.Get(ctx, accountType, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, util.NewNotFound("account")
		}
		return nil, storeErr(err)
	}
	return docAccount(doc), nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*Account, error) {
	q := store.Query{Filters: []store.Filter{{Field: "email", Op: store.OpEquals, Value: email}}}
	docs, _, err := s.store.Query(ctx, accountType, q)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docAccount(docs[0]), nil
}

func (s *AuthService) publish(ctx context.Context, typ events.EventType, actorID string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	})
}

func accountDoc(a *Account) domain.Document {
	return domain.Document{
		domain.FieldID:        a.ID,
		"name":                a.Name,
		"email":               a.Email,
		"password_hash":       a.PasswordHash,
		"role":                string(a.Role),
		domain.FieldCreatedAt: a.CreatedAt,
	}
}

func docAccount(doc domain.Document) *Account {
	account := &Account{ID: doc.Key()}
	account.Name, _ = doc["name"].(string)
	account.Email, _ = doc["email"].(string)
	account.PasswordHash, _ = doc["password_hash"].(string)
	if role, ok := doc["role"].(string); ok {
		account.Role = domain.Role(role)
	}
	account.CreatedAt, _ = doc[domain.FieldCreatedAt].(string)
	return account
}

func storeErr(err error) error {
	var domainErr *util.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return util.NewInternal("store_failure", err)
}
