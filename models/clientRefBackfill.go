package models

import (
	"context"
	"regexp"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

// legacyClientRef matches the trailing code of a stored "Asha (PI0001)".
var legacyClientRef = regexp.MustCompile(`\(\s*([A-Za-z]+\d+)\s*\)\s*$`)

type BackfillReport struct {
	Scanned   int      `json:"scanned"`
	Updated   int      `json:"updated"`
	Unmatched []string `json:"unmatched"`
}

type referringCollection struct {
	name string
	refs map[string]string
}

func referringCollections() []referringCollection {
	return []referringCollection{
		{FdEntryCollection, FdEntry{}.ClientRefs()},
		{InsuranceCollection, Insurance{}.ClientRefs()},
		{MediclaimCollection, Mediclaim{}.ClientRefs()},
		{PostalEntryCollection, PostalEntry{}.ClientRefs()},
	}
}

// LegacyClientCode extracts the client code from a legacy display string.
func LegacyClientCode(display string) (string, bool) {
	m := legacyClientRef.FindStringSubmatch(strings.TrimSpace(display))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// BackfillClientRefs sets missing client id fields on entries that only
// carry the legacy display string. Without apply nothing is written.
// Unmatched lists collection/id/field for strings that name no client.
func BackfillClientRefs(ctx context.Context, store docstore.Store, apply bool) (BackfillReport, error) {
	var report BackfillReport

	clients, err := store.List(ctx, docstore.Collection(ClientCollection))
	if err != nil {
		return report, err
	}
	byCode := make(map[string]string, len(clients))
	for _, doc := range clients {
		if code, _ := doc.Data["clientNumber"].(string); code != "" {
			byCode[strings.ToUpper(code)] = doc.ID
		}
	}

	for _, rc := range referringCollections() {
		docs, err := store.List(ctx, docstore.Collection(rc.name))
		if err != nil {
			return report, err
		}
		for _, doc := range docs {
			report.Scanned++
			fields := docstore.Data{}
			for idField, nameField := range rc.refs {
				if id, _ := doc.Data[idField].(string); id != "" {
					continue
				}
				display, _ := doc.Data[nameField].(string)
				code, ok := LegacyClientCode(display)
				if !ok {
					continue
				}
				clientID, found := byCode[code]
				if !found {
					report.Unmatched = append(report.Unmatched, rc.name+"/"+doc.ID+"/"+nameField)
					continue
				}
				fields[idField] = clientID
			}
			if len(fields) == 0 {
				continue
			}
			if apply {
				if err := store.Update(ctx, rc.name, doc.ID, fields); err != nil {
					return report, err
				}
			}
			report.Updated++
		}
	}
	return report, nil
}
