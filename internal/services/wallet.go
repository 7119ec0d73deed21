package services

import (
	"context"
	"errors"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
	"tradebot/internal/models"
)

type ServiceWallet struct {
	container *do.Injector
	db        *database.Adapter
	rs        *redsync.Redsync
}

func NewServiceWallet(container *do.Injector) (*ServiceWallet, error) {
	db, err := do.Invoke[*database.Adapter](container)
	if err != nil {
		return nil, err
	}

	// without a mutex redis the transaction alone guards the active switch
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		logx.Infow("wallet service runs without distributed lock", logx.Field("reason", err.Error()))
		rs = nil
	}

	return &ServiceWallet{container, db, rs}, nil
}

func (service *ServiceWallet) lock(ctx context.Context, userPlatformID string) (func(), error) {
	return lockKey(ctx, service.rs, LockKeyUserWallet(userPlatformID), WALLET_LOCK_EXPIRY, ErrWalletLock)
}

// CreateWallet stores a wallet. The user's first wallet becomes the active
// one.
func (service *ServiceWallet) CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	unlock, err := service.lock(ctx, wallet.UserPlatformID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return database.InTransaction(ctx, service.db, func(ctx context.Context, tx database.Querier) (*models.Wallet, error) {
		active, err := datastore.GetActiveWallet(ctx, tx, wallet.UserPlatformID)
		if err != nil {
			return nil, err
		}
		wallet.IsActive = active == nil
		return datastore.CreateWallet(ctx, tx, wallet)
	})
}

// ActivateWallet makes walletID the only active wallet of the user.
func (service *ServiceWallet) ActivateWallet(ctx context.Context, userPlatformID, walletID string) error {
	unlock, err := service.lock(ctx, userPlatformID)
	if err != nil {
		return err
	}
	defer unlock()

	err = service.db.Transaction(ctx, func(ctx context.Context, tx database.Querier) error {
		return datastore.SetActiveWallet(ctx, tx, userPlatformID, walletID)
	})
	if errors.Is(err, database.ErrNoRows) {
		return errorx.Wrap(ErrWalletNotFound, errorx.NotExist)
	}
	return err
}

func (service *ServiceWallet) GetActiveWallet(ctx context.Context, userPlatformID string) (*models.Wallet, error) {
	wallet, err := datastore.GetActiveWallet(ctx, service.db, userPlatformID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errorx.Wrap(ErrWalletNotFound, errorx.NotExist)
	}
	return wallet, nil
}

func (service *ServiceWallet) ListWallets(ctx context.Context, userPlatformID string) ([]*models.Wallet, error) {
	return datastore.GetUserWallets(ctx, service.db, userPlatformID)
}

func (service *ServiceWallet) UpdateSettings(ctx context.Context, userPlatformID, walletID string, settings models.WalletSettings) error {
	if _, err := service.ownedWallet(ctx, userPlatformID, walletID); err != nil {
		return err
	}
	return datastore.UpdateWalletSettings(ctx, service.db, walletID, settings)
}

// RecordTrade appends a trade made from one of the user's wallets.
func (service *ServiceWallet) RecordTrade(ctx context.Context, trade *models.Trade) (string, error) {
	if _, err := service.ownedWallet(ctx, trade.UserPlatformID, trade.WalletID); err != nil {
		return "", err
	}
	return datastore.RecordTrade(ctx, service.db, trade)
}

func (service *ServiceWallet) TradeStats(ctx context.Context, userPlatformID string) (*models.TradeStats, error) {
	return datastore.GetTradeStats(ctx, service.db, userPlatformID)
}

func (service *ServiceWallet) ownedWallet(ctx context.Context, userPlatformID, walletID string) (*models.Wallet, error) {
	wallet, err := datastore.GetWalletByID(ctx, service.db, walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil || wallet.UserPlatformID != userPlatformID {
		return nil, errorx.Wrap(ErrWalletNotFound, errorx.NotExist)
	}
	return wallet, nil
}
