package middlewares

import (
	"context"

	"bitbucket.org/prajapati/wealth_backend/models"
	"github.com/graph-gophers/dataloader/v7"
)

type clientReader struct {
	clients *models.ClientRepository
}

func (r *clientReader) getClients(ctx context.Context, ids []string) []*dataloader.Result[*models.Client] {
	found, err := r.clients.GetMany(ctx, ids)
	if err != nil {
		return handleError[*models.Client](len(ids), err)
	}
	return generateLoaderResults(found, ids)
}

func GetClient(ctx context.Context, id string) (*models.Client, error) {
	loaders := For(ctx)
	return loaders.clientLoader.Load(ctx, id)()
}

// LookupClients implements models.ClientLookup through the request's batch
// loader. Unknown ids are left out.
func (l *Loaders) LookupClients(ctx context.Context, ids []string) (map[string]*models.Client, error) {
	clients, errs := l.clientLoader.LoadMany(ctx, ids)()
	out := make(map[string]*models.Client, len(ids))
	for i, id := range ids {
		if i < len(errs) && errs[i] != nil {
			return nil, errs[i]
		}
		if i < len(clients) && clients[i] != nil {
			out[id] = clients[i]
		}
	}
	return out, nil
}

// ClientLookup prefers the request's loaders and falls back to fallback
// outside a request.
func ClientLookup(ctx context.Context, fallback models.ClientLookup) models.ClientLookup {
	if loaders := For(ctx); loaders != nil {
		return loaders
	}
	return fallback
}
