package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type AddressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, address *types.Address) (*types.Address, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Address, error)
	// FindByNormalizedFields looks an address up by its canonical 4-tuple.
	// Returns (nil, nil) when no row matches.
	FindByNormalizedFields(ctx context.Context, tx *gorm.DB, city, addrType, addressName, number string) (*types.Address, error)
}

type addressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAddressRepo(db *gorm.DB, baseLog *logger.Logger) AddressRepo {
	repoLog := baseLog.With("repo", "AddressRepo")
	return &addressRepo{db: db, log: repoLog}
}

func (ar *addressRepo) Create(ctx context.Context, tx *gorm.DB, address *types.Address) (*types.Address, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	// Nested transaction: a savepoint when tx is already open, so a
	// duplicate-key failure from a losing insert race does not poison the
	// caller's transaction.
	if err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return inner.Create(address).Error
	}); err != nil {
		return nil, err
	}
	return address, nil
}

func (ar *addressRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Address, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var address types.Address
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (ar *addressRepo) FindByNormalizedFields(ctx context.Context, tx *gorm.DB, city, addrType, addressName, number string) (*types.Address, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var address types.Address
	err := transaction.WithContext(ctx).
		Where("city = ? AND type = ? AND address_name = ? AND number = ?", city, addrType, addressName, number).
		Limit(1).
		Find(&address).Error
	if err != nil {
		return nil, err
	}
	if address.ID == uuid.Nil {
		return nil, nil
	}
	return &address, nil
}
