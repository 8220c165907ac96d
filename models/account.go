package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength    = 6
	DefaultTokenLifespan = 24 * time.Hour
)

type Account struct {
	Base
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PhotoURL     string     `json:"photoURL,omitempty"`
	Photo        *ObjectRef `json:"photo,omitempty"`
	PasswordHash string     `json:"passwordHash"`
}

// Identity is the signed-in user as the rest of the application sees it.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	TokenID     string `json:"-"`
}

func (a *Account) Identity() *Identity {
	return &Identity{UID: a.ID, Email: a.Email, DisplayName: a.DisplayName, PhotoURL: a.PhotoURL}
}

type AccountService struct {
	store    docstore.Store
	accounts *Repository[Account]
	sessions SessionStore
	lifespan time.Duration
}

func NewAccountService(store docstore.Store, sessions SessionStore, lifespan time.Duration) *AccountService {
	if lifespan <= 0 {
		lifespan = DefaultTokenLifespan
	}
	if sessions == nil {
		sessions = NewMemorySessionStore()
	}
	return &AccountService{
		store:    store,
		accounts: NewRepository[Account](store, AccountCollection),
		sessions: sessions,
		lifespan: lifespan,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var emailValidator = validator.New()

// validateEmail also refuses "/", which cannot appear in the email index id.
func validateEmail(email string) error {
	if err := emailValidator.Var(email, "required,email"); err != nil || strings.Contains(email, "/") {
		return ErrInvalidEmail
	}
	return nil
}

// SignUp creates an account. The email index document and the account are
// written in one transaction so two sign-ups with one email cannot both win.
func (s *AccountService) SignUp(ctx context.Context, email, password, displayName string) (*Account, error) {
	email = emailKey(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	uid := docstore.NewID()
	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		_, err := tx.Get(AccountEmailCollection, email)
		if err == nil {
			return ErrEmailAlreadyInUse
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		if err := tx.Set(AccountEmailCollection, email, docstore.Data{"uid": uid}); err != nil {
			return err
		}
		return tx.Set(AccountCollection, uid, docstore.Data{
			"email":        email,
			"displayName":  strings.TrimSpace(displayName),
			"passwordHash": string(hash),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.accounts.Get(ctx, uid)
}

func (s *AccountService) findByEmail(ctx context.Context, email string) (*Account, error) {
	index, err := s.store.Get(ctx, AccountEmailCollection, emailKey(email))
	if err != nil {
		return nil, err
	}
	uid, _ := index.Data["uid"].(string)
	if uid == "" {
		return nil, fmt.Errorf("email index %s: %w", email, docstore.ErrNotFound)
	}
	return s.accounts.Get(ctx, uid)
}

// SignIn checks the credentials and opens a session.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (string, *Identity, error) {
	account, err := s.findByEmail(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := utils.ComparePassword(account.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := utils.JwtGenerate(account.ID, account.Email, s.lifespan)
	if err != nil {
		return "", nil, err
	}
	claims, err := utils.JwtValidate(token)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Save(ctx, claims.Id, account.ID, s.lifespan); err != nil {
		return "", nil, err
	}
	identity := account.Identity()
	identity.TokenID = claims.Id
	return token, identity, nil
}

// Authenticate resolves a token to the signed-in identity.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := utils.JwtValidate(token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	uid, ok, err := s.sessions.Lookup(ctx, claims.Id)
	if err != nil {
		return nil, err
	}
	if !ok || uid != claims.UserID {
		return nil, ErrSessionExpired
	}
	account, err := s.accounts.Get(ctx, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	identity := account.Identity()
	identity.TokenID = claims.Id
	return identity, nil
}

func (s *AccountService) SignOut(ctx context.Context, token string) error {
	claims, err := utils.JwtValidate(token)
	if err != nil {
		// an invalid token has no session to end
		return nil
	}
	return s.sessions.Remove(ctx, claims.Id)
}

func (s *AccountService) Get(ctx context.Context, uid string) (*Account, error) {
	return s.accounts.Get(ctx, uid)
}

// Delete removes the account and its email index entry.
func (s *AccountService) Delete(ctx context.Context, uid string) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(AccountCollection, uid)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if email, _ := doc.Data["email"].(string); email != "" {
			tx.Delete(AccountEmailCollection, email)
		}
		tx.Delete(AccountCollection, uid)
		return nil
	})
}

func (s *AccountService) SetPhoto(ctx context.Context, uid string, ref *ObjectRef) error {
	return s.accounts.Update(ctx, uid, docstore.Data{"photo": ref, "photoURL": ref.URL})
}
