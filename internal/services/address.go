package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/normalization"
	"github.com/petfolio/petfolio-backend/internal/repos"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type AddressInput struct {
	City        string
	Type        string
	AddressName string
	Number      string
}

type AddressService interface {
	// FindOrCreate resolves the canonical address row for the normalized
	// input fields, creating it when absent. Idempotent under concurrent
	// field-equivalent callers: one row is ever persisted and every caller
	// converges on its identity. Pass tx to join an open transaction.
	FindOrCreate(ctx context.Context, tx *gorm.DB, in AddressInput) (*types.Address, error)
}

type addressService struct {
	log         *logger.Logger
	addressRepo repos.AddressRepo
}

func NewAddressService(log *logger.Logger, addressRepo repos.AddressRepo) AddressService {
	serviceLog := log.With("service", "AddressService")
	return &addressService{log: serviceLog, addressRepo: addressRepo}
}

func (as *addressService) FindOrCreate(ctx context.Context, tx *gorm.DB, in AddressInput) (*types.Address, error) {
	city := normalization.NormalizeField(in.City)
	addrType := normalization.NormalizeField(in.Type)
	name := normalization.NormalizeField(in.AddressName)
	number := normalization.NormalizeField(in.Number)
	if city == "" || addrType == "" || name == "" || number == "" {
		return nil, apierr.Validation("address requires city, type, address_name and number")
	}

	found, err := as.addressRepo.FindByNormalizedFields(ctx, tx, city, addrType, name, number)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	if found != nil {
		return found, nil
	}

	created, createErr := as.addressRepo.Create(ctx, tx, &types.Address{
		City:        city,
		Type:        addrType,
		AddressName: name,
		Number:      number,
	})
	if createErr == nil {
		return created, nil
	}
	if !repos.IsDuplicateKey(createErr) {
		return nil, apierr.Storage(createErr)
	}

	// Another caller inserted the same normalized tuple between the lookup
	// and the insert. One re-read converges on the winner's row; anything
	// else means the original failure was a genuine storage fault.
	as.log.Debug("Address insert lost a creation race, re-reading",
		"city", city, "type", addrType, "address_name", name, "number", number)
	again, lookupErr := as.addressRepo.FindByNormalizedFields(ctx, tx, city, addrType, name, number)
	if lookupErr == nil && again != nil {
		return again, nil
	}
	return nil, apierr.Storage(createErr)
}
