package middlewares

import (
	"context"
	"time"

	"bitbucket.org/prajapati/wealth_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders batch the lookups one request makes.
type Loaders struct {
	clientLoader *dataloader.Loader[string, *models.Client]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(repos *models.Repositories) *Loaders {
	clientReader := &clientReader{clients: repos.Clients}
	return &Loaders{
		clientLoader: dataloader.NewBatchedLoader(clientReader.getClients, dataloader.WithWait[string, *models.Client](time.Millisecond)),
	}
}

func LoaderMiddleware(repos *models.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(repos)
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// For returns the request's loaders, or nil outside a request.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// generateLoaderResults orders found records by the requested ids; a missing
// id gets a nil record.
func generateLoaderResults[T any](found map[string]*T, ids []string) []*dataloader.Result[*T] {
	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: found[id]})
	}
	return loaderResults
}
