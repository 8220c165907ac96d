package models

import (
	"context"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
)

// ClientLookup loads clients by id. Missing ids are absent from the result.
type ClientLookup interface {
	LookupClients(ctx context.Context, ids []string) (map[string]*Client, error)
}

func (r *ClientRepository) LookupClients(ctx context.Context, ids []string) (map[string]*Client, error) {
	return r.GetMany(ctx, ids)
}

// ClientDisplay renders the reference to id for people reading a record.
func ClientDisplay(clients map[string]*Client, id string) string {
	if id == "" {
		return ""
	}
	if c, ok := clients[id]; ok && c != nil {
		return c.DisplayName()
	}
	return "Unknown client (" + id + ")"
}

// RecordViews turns records into plain field maps, adding the display string
// of every client the records point at.
func RecordViews[T any](ctx context.Context, lookup ClientLookup, records []*T) ([]docstore.Data, error) {
	views := make([]docstore.Data, 0, len(records))
	refs := make([]map[string]string, 0, len(records))
	var ids []string
	for _, rec := range records {
		view, err := docstore.Normalize(rec)
		if err != nil {
			return nil, err
		}
		var recRefs map[string]string
		if referrer, ok := any(rec).(ClientReferrer); ok {
			recRefs = referrer.ClientRefs()
			for idField := range recRefs {
				if id, _ := view[idField].(string); id != "" {
					ids = append(ids, id)
				}
			}
		}
		views = append(views, view)
		refs = append(refs, recRefs)
	}
	if len(ids) == 0 || lookup == nil {
		return views, nil
	}
	clients, err := lookup.LookupClients(ctx, utils.UniqueSlice(ids))
	if err != nil {
		return nil, err
	}
	for i, view := range views {
		for idField, nameField := range refs[i] {
			id, _ := view[idField].(string)
			view[nameField] = ClientDisplay(clients, id)
		}
	}
	return views, nil
}
