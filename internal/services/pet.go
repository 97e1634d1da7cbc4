package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/normalization"
	"github.com/petfolio/petfolio-backend/internal/repos"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type PetInput struct {
	Name    string
	Age     int
	Type    types.PetType
	Address AddressInput
}

// PetMutator mutates a freshly locked pet in place, inside the transaction
// that holds the lock.
type PetMutator func(ctx context.Context, tx *gorm.DB, pet *types.Pet) error

type PetService interface {
	Create(ctx context.Context, in PetInput) (*types.Pet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Pet, error)
	Update(ctx context.Context, id uuid.UUID, in PetInput) (*types.Pet, error)
	// UpdateWithLock: same locked-update protocol as UserService.
	UpdateWithLock(ctx context.Context, id uuid.UUID, mutate PetMutator) (*types.Pet, error)
	MarkDeceased(ctx context.Context, id uuid.UUID) (*types.Pet, error)
	ByType(ctx context.Context, petType types.PetType) ([]*types.Pet, error)
	AliveByCity(ctx context.Context, city string) ([]*types.Pet, error)
}

type petService struct {
	db             *gorm.DB
	log            *logger.Logger
	policy         RetryPolicy
	petRepo        repos.PetRepo
	addressService AddressService
}

func NewPetService(db *gorm.DB, log *logger.Logger, policy RetryPolicy, petRepo repos.PetRepo, addressService AddressService) PetService {
	serviceLog := log.With("service", "PetService")
	return &petService{
		db:             db,
		log:            serviceLog,
		policy:         policy,
		petRepo:        petRepo,
		addressService: addressService,
	}
}

func validatePetInput(in PetInput) error {
	if normalization.NormalizeField(in.Name) == "" {
		return apierr.Validation("pet name is required")
	}
	if in.Age < 0 || in.Age > 200 {
		return apierr.Validation("pet age must be between 0 and 200")
	}
	if !in.Type.Valid() {
		return apierr.Validation("invalid pet type: %q", in.Type)
	}
	return nil
}

func (ps *petService) Create(ctx context.Context, in PetInput) (*types.Pet, error) {
	if err := validatePetInput(in); err != nil {
		return nil, err
	}
	var created *types.Pet
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addr, err := ps.addressService.FindOrCreate(ctx, tx, in.Address)
		if err != nil {
			return err
		}
		pet := &types.Pet{
			Name:      in.Name,
			Age:       in.Age,
			Type:      in.Type,
			AddressID: addr.ID,
		}
		saved, err := ps.petRepo.Create(ctx, tx, pet)
		if err != nil {
			return apierr.Storage(err)
		}
		saved.Address = addr
		created = saved
		return nil
	}); err != nil {
		return nil, err
	}
	return created, nil
}

func (ps *petService) GetByID(ctx context.Context, id uuid.UUID) (*types.Pet, error) {
	pet, err := ps.petRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("pet not found: %s", id)
		}
		return nil, apierr.Storage(err)
	}
	return pet, nil
}

func (ps *petService) Update(ctx context.Context, id uuid.UUID, in PetInput) (*types.Pet, error) {
	if err := validatePetInput(in); err != nil {
		return nil, err
	}
	return ps.UpdateWithLock(ctx, id, func(ctx context.Context, tx *gorm.DB, pet *types.Pet) error {
		addr, err := ps.addressService.FindOrCreate(ctx, tx, in.Address)
		if err != nil {
			return err
		}
		pet.Name = in.Name
		pet.Age = in.Age
		pet.Type = in.Type
		pet.AddressID = addr.ID
		pet.Address = addr
		return nil
	})
}

func (ps *petService) UpdateWithLock(ctx context.Context, id uuid.UUID, mutate PetMutator) (*types.Pet, error) {
	var updated *types.Pet
	err := withLockRetry(ctx, ps.log, ps.policy, func(attempt int) error {
		return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := ps.petRepo.LockForUpdate(ctx, tx, id, ps.policy.LockTimeout)
			if err != nil {
				if repos.IsNotFound(err) {
					return apierr.NotFound("pet not found: %s", id)
				}
				if repos.IsLockBusy(err) {
					return apierr.Busy(err)
				}
				return apierr.Storage(err)
			}
			if err := mutate(ctx, tx, locked); err != nil {
				return err
			}
			saved, err := ps.petRepo.Save(ctx, tx, locked)
			if err != nil {
				return apierr.Storage(err)
			}
			updated = saved
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (ps *petService) MarkDeceased(ctx context.Context, id uuid.UUID) (*types.Pet, error) {
	return ps.UpdateWithLock(ctx, id, func(ctx context.Context, tx *gorm.DB, pet *types.Pet) error {
		pet.IsDeceased = true
		return nil
	})
}

func (ps *petService) ByType(ctx context.Context, petType types.PetType) ([]*types.Pet, error) {
	if !petType.Valid() {
		return nil, apierr.Validation("invalid pet type: %q", petType)
	}
	results, err := ps.petRepo.FindByType(ctx, nil, petType)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return results, nil
}

func (ps *petService) AliveByCity(ctx context.Context, city string) ([]*types.Pet, error) {
	results, err := ps.petRepo.FindAliveByCity(ctx, nil, normalization.NormalizeField(city))
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return results, nil
}
