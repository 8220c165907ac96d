package models

import (
	"errors"
	"time"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

const (
	ClientCollection       = "clients"
	EmployeeCollection     = "myEmployee"
	ExecutiveCollection    = "employees"
	FdEntryCollection      = "fdEntries"
	InsuranceCollection    = "insurances"
	MediclaimCollection    = "mediclaim"
	PostalEntryCollection  = "postalEntries"
	PhoneLogCollection     = "phoneLogs"
	ChequeCollection       = "cheques"
	LocationCollection     = "locations"
	AreaCollection         = "areas"
	AccountCollection      = "accounts"
	AccountEmailCollection = "accountEmails"
	NotificationCollection = "notifications"
	AdminCollection        = "Admin"
	AdminDocID             = "data"
	CatalogCollection      = "ProductMaster"
	CatalogDocID           = "masterData"
	CounterCollection      = "metadata"
	ClientCounterID        = "clientsCounter"
)

var (
	ErrClientNumberImmutable   = errors.New("clientNumber cannot be changed")
	ErrFamilyMembersAppendOnly = errors.New("family members can only be appended")
	ErrCategoryExists          = errors.New("category already exists")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCatalogItemNotFound     = errors.New("catalog item not found")
	ErrEmailAlreadyInUse       = errors.New("email already in use")
	ErrWeakPassword            = errors.New("password must be at least 6 characters")
	ErrInvalidEmail            = errors.New("invalid email")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrSessionExpired          = errors.New("session expired")
	ErrNoClientIDs             = errors.New("no clients provided")
	ErrNoRecipients            = errors.New("none of the selected clients has an email address")
	ErrImageStorageDisabled    = errors.New("image storage is not configured")
	ErrMailerDisabled          = errors.New("mail relay is not configured")
)

// Base carries the metadata every stored record has. It is filled from the
// document, never from its data.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) setMeta(doc *docstore.Document) {
	b.ID = doc.ID
	b.CreatedAt = doc.CreatedAt
	b.UpdatedAt = doc.UpdatedAt
}

type metaSetter interface {
	setMeta(doc *docstore.Document)
}

// ObjectRef points at a file in object storage.
type ObjectRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ClientReferrer is implemented by entries that point at clients by id.
// The map goes from the id field to the field that receives the display string.
type ClientReferrer interface {
	ClientRefs() map[string]string
}
