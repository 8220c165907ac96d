package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
)

type FamilyRelation string

const (
	RelationWife     FamilyRelation = "Wife"
	RelationHusband  FamilyRelation = "Husband"
	RelationFather   FamilyRelation = "Father"
	RelationMother   FamilyRelation = "Mother"
	RelationChildren FamilyRelation = "Children"
	RelationOther    FamilyRelation = "Other"
)

var FamilyRelations = []FamilyRelation{RelationWife, RelationHusband, RelationFather, RelationMother, RelationChildren, RelationOther}

type FamilyMember struct {
	Relation       FamilyRelation `json:"relation"`
	Name           string         `json:"name"`
	Dob            string         `json:"dob"`
	BirthCity      string         `json:"birthCity"`
	AadhaarCard    string         `json:"aadhaarCard"`
	PanCard        string         `json:"panCard"`
	PassportNumber string         `json:"passportNumber"`
	Number         string         `json:"number"`
	Email          string         `json:"email"`
}

type Client struct {
	Base
	ClientNumber      string         `json:"clientNumber"`
	Name              string         `json:"name"`
	FamilyName        string         `json:"familyName"`
	Dob               string         `json:"dob"`
	Number            string         `json:"number"`
	WhatsappNumber    string         `json:"whatsappNumber,omitempty"`
	Email             string         `json:"email"`
	Address           string         `json:"address"`
	BirthCity         string         `json:"birthCity"`
	MaritalStatus     string         `json:"maritalStatus"`
	SpouseName        string         `json:"spouseName,omitempty"`
	PanCard           string         `json:"panCard"`
	AadhaarCard       string         `json:"aadhaarCard"`
	PassportNumber    string         `json:"passportNumber"`
	VoterNumber       string         `json:"voterNumber"`
	CanteenCardNumber string         `json:"canteenCardNumber"`
	ProfileImage      *ObjectRef     `json:"profileImage,omitempty"`
	City              string         `json:"city"`
	State             string         `json:"state"`
	Location          string         `json:"location"`
	Area              string         `json:"area"`
	FamilyMembers     []FamilyMember `json:"familyMembers"`
}

// DisplayName is how other records show the client: "name (PI0001)".
func (c *Client) DisplayName() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ClientNumber)
}

type ClientRepository struct {
	*Repository[Client]
	images *ProfileImageService
}

func NewClientRepository(store docstore.Store, images *ProfileImageService) *ClientRepository {
	return &ClientRepository{
		Repository: NewRepository[Client](store, ClientCollection),
		images:     images,
	}
}

// CreateClient assigns the next client code and writes the client in the same
// transaction, so a failed create consumes no number.
func (r *ClientRepository) CreateClient(ctx context.Context, fields docstore.Data) (*Client, error) {
	ctx, span := r.span(ctx, "CreateClient")
	defer span.End()

	data := sanitizeFields[Client](fields)
	delete(data, "clientNumber")
	normalizeMarital(data, true)
	if err := r.migrateInlineImage(ctx, "", fields, data); err != nil {
		return nil, err
	}

	var id, code string
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		next, err := nextCounter(tx, CounterCollection, ClientCounterID)
		if err != nil {
			return err
		}
		code = FormatClientCode(next)
		data["clientNumber"] = code
		id, err = tx.Create(ClientCollection, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	clientCodesIssued.Inc()
	return r.Get(ctx, id)
}

// Create is CreateClient for a typed record; ClientNumber is ignored.
func (r *ClientRepository) Create(ctx context.Context, client *Client) (string, error) {
	data, err := encodeRecord(client)
	if err != nil {
		return "", err
	}
	created, err := r.CreateClient(ctx, data)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// Update merges partial into the client. A clientNumber equal to the stored
// one and a familyMembers list that starts with the stored members are
// accepted, so a fetched record can be sent back with edits.
func (r *ClientRepository) Update(ctx context.Context, id string, partial docstore.Data) error {
	ctx, span := r.span(ctx, "Update")
	defer span.End()

	data := sanitizeFields[Client](partial)
	normalizeMarital(data, false)
	if err := r.migrateInlineImage(ctx, id, partial, data); err != nil {
		return err
	}
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ClientCollection, id)
		if err != nil {
			return err
		}
		fields := make(docstore.Data, len(data))
		for k, v := range data {
			fields[k] = v
		}
		if err := reconcileClientUpdate(doc.Data, fields); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Update(ClientCollection, id, fields)
	})
}

// reconcileClientUpdate drops clientNumber and familyMembers from fields when
// they match what is stored, and rejects changes to either beyond appending
// family members.
func reconcileClientUpdate(stored, fields docstore.Data) error {
	if v, ok := fields["clientNumber"]; ok {
		current, _ := stored["clientNumber"].(string)
		if fmt.Sprint(v) != current {
			return ErrClientNumberImmutable
		}
		delete(fields, "clientNumber")
	}
	for k := range fields {
		if strings.HasPrefix(k, "familyMembers.") {
			return ErrFamilyMembersAppendOnly
		}
	}
	v, ok := fields["familyMembers"]
	if !ok {
		return nil
	}
	current, err := familyMembersOf(stored["familyMembers"])
	if err != nil {
		return err
	}
	next, err := familyMembersOf(v)
	if err != nil {
		return fmt.Errorf("%w: familyMembers: %v", docstore.ErrInvalidArgument, err)
	}
	if len(next) < len(current) {
		return ErrFamilyMembersAppendOnly
	}
	for i := range current {
		if next[i] != current[i] {
			return ErrFamilyMembersAppendOnly
		}
	}
	if len(next) == len(current) {
		delete(fields, "familyMembers")
		return nil
	}
	fields["familyMembers"] = next
	return nil
}

func familyMembersOf(v any) ([]FamilyMember, error) {
	var holder struct {
		FamilyMembers []FamilyMember `json:"familyMembers"`
	}
	if v == nil {
		return nil, nil
	}
	if err := decodeData(docstore.Data{"familyMembers": v}, &holder); err != nil {
		return nil, err
	}
	return holder.FamilyMembers, nil
}

// Remove deletes the client and, best effort, its profile image.
func (r *ClientRepository) Remove(ctx context.Context, id string) error {
	client, err := r.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.Repository.Remove(ctx, id); err != nil {
		return err
	}
	if client.ProfileImage != nil && r.images != nil {
		if err := r.images.Delete(ctx, client.ProfileImage.Path); err != nil {
			config.LogError(config.GetLogger(), "ClientRepository", "Remove", "delete profile image", client.ProfileImage.Path, err)
		}
	}
	return nil
}

// AddFamilyMember appends member unless an identical member is already there.
func (r *ClientRepository) AddFamilyMember(ctx context.Context, clientID string, member FamilyMember) error {
	ctx, span := r.span(ctx, "AddFamilyMember")
	defer span.End()
	return r.store.ArrayUnion(ctx, ClientCollection, clientID, "familyMembers", member)
}

// SetProfileImage stores a new image for the client and drops the previous one.
func (r *ClientRepository) SetProfileImage(ctx context.Context, clientID string, image io.Reader) (*ObjectRef, error) {
	if r.images == nil {
		return nil, ErrImageStorageDisabled
	}
	client, err := r.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	ref, err := r.images.Replace(ctx, clientID, client.ProfileImage, image)
	if err != nil {
		return nil, err
	}
	if err := r.Repository.Update(ctx, clientID, docstore.Data{"profileImage": ref}); err != nil {
		return nil, err
	}
	return ref, nil
}

// migrateInlineImage moves a legacy base64 "profilePic" into object storage.
func (r *ClientRepository) migrateInlineImage(ctx context.Context, clientID string, raw, data docstore.Data) error {
	pic, _ := raw["profilePic"].(string)
	if !strings.HasPrefix(pic, "data:") {
		return nil
	}
	if r.images == nil || !config.MigrateLegacyProfileImages() {
		return nil
	}
	owner := clientID
	if owner == "" {
		owner = docstore.NewID()
	}
	var previous *ObjectRef
	if clientID != "" {
		if existing, err := r.Get(ctx, clientID); err == nil {
			previous = existing.ProfileImage
		}
	}
	ref, err := r.images.FromDataURI(ctx, owner, previous, pic)
	if err != nil {
		return err
	}
	data["profileImage"] = ref
	return nil
}

// normalizeMarital defaults maritalStatus to "No" and clears spouseName for
// unmarried clients.
func normalizeMarital(data docstore.Data, creating bool) {
	status, ok := data["maritalStatus"].(string)
	if !ok {
		if !creating {
			return
		}
		status = ""
	}
	if status != "Yes" {
		data["maritalStatus"] = "No"
		if creating {
			delete(data, "spouseName")
		} else {
			data["spouseName"] = ""
		}
	}
}
