package models

import (
	"context"
	"errors"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
)

type AdminProfile struct {
	Email string `json:"email"`
}

// AdminDirectory reads the single Admin/data document, cached in redis.
type AdminDirectory struct {
	store docstore.Store
}

func NewAdminDirectory(store docstore.Store) *AdminDirectory {
	return &AdminDirectory{store: store}
}

// Get returns nil when no admin is configured.
func (a *AdminDirectory) Get(ctx context.Context) (*AdminProfile, error) {
	cached, err := utils.RetrieveRedis[AdminProfile](ctx, AdminDocID)
	if err != nil {
		config.LogError(config.GetLogger(), "AdminDirectory", "Get", "read cache", AdminDocID, err)
	}
	if cached != nil {
		return cached, nil
	}
	doc, err := a.store.Get(ctx, AdminCollection, AdminDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var admin AdminProfile
	if err := decodeData(doc.Data, &admin); err != nil {
		return nil, err
	}
	if err := utils.StoreRedis(ctx, &admin, AdminDocID); err != nil {
		config.LogError(config.GetLogger(), "AdminDirectory", "Get", "write cache", AdminDocID, err)
	}
	return &admin, nil
}

func (a *AdminDirectory) SetEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := a.store.Merge(ctx, AdminCollection, AdminDocID, docstore.Data{"email": email}); err != nil {
		return err
	}
	return utils.RemoveRedisItem[AdminProfile](ctx, AdminDocID)
}
