package services

import (
	"context"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
	"tradebot/internal/models"
	"tradebot/internal/pkg/caching"
)

type ServiceToken struct {
	container *do.Injector
	db        *database.Adapter
	cache     caching.Cache
}

func NewServiceToken(container *do.Injector) (*ServiceToken, error) {
	db, err := do.Invoke[*database.Adapter](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceToken{container, db, cache}, nil
}

// ResolveToken finds an active token by symbol. Hits are cached; misses are
// not, so a token imported later resolves immediately.
func (service *ServiceToken) ResolveToken(ctx context.Context, symbol, chain string) (*models.Token, error) {
	if chain == "" {
		chain = datastore.DEFAULT_CHAIN
	}

	callback := func() (*models.Token, error) {
		token, err := datastore.GetTokenBySymbol(ctx, service.db, symbol, chain)
		if err != nil {
			return nil, err
		}
		if token == nil {
			return nil, errorx.Wrap(ErrTokenNotFound, errorx.NotExist)
		}
		return token, nil
	}

	return caching.UseCache(ctx, service.cache, KeyToken(symbol, chain), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceToken) Search(ctx context.Context, query string) ([]*models.Token, error) {
	return datastore.SearchTokens(ctx, service.db, query)
}

func (service *ServiceToken) ListActive(ctx context.Context, chain string) ([]*models.Token, error) {
	return datastore.ListActiveTokens(ctx, service.db, chain)
}

func (service *ServiceToken) Import(ctx context.Context, data []byte) (int, error) {
	return datastore.ImportTokensFromJSON(ctx, service.db, data)
}

func (service *ServiceToken) Deactivate(ctx context.Context, symbol, chain string) error {
	token, err := service.ResolveToken(ctx, symbol, chain)
	if err != nil {
		return err
	}

	if err := datastore.DeactivateToken(ctx, service.db, token.ID); err != nil {
		return err
	}
	return service.cache.Delete(ctx, KeyToken(token.Symbol, token.Chain))
}
