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

type UserInput struct {
	Name      string
	FirstName string
	Age       int
	Gender    types.Gender
	Address   AddressInput
}

// UserMutator mutates a freshly locked user in place. It runs inside the
// transaction that holds the lock; the record must not escape it.
type UserMutator func(ctx context.Context, tx *gorm.DB, user *types.User) error

type UserService interface {
	Create(ctx context.Context, in UserInput) (*types.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	// Update replaces the user's core fields and re-resolves the address
	// under the locked-update protocol.
	Update(ctx context.Context, id uuid.UUID, in UserInput) (*types.User, error)
	// UpdateWithLock acquires an exclusive row lock with a bounded wait,
	// applies mutate to the locked copy, and persists within the same
	// transaction. Transient contention is retried with exponential
	// backoff; a missing id fails NotFound immediately and is never
	// retried; an exhausted budget fails Conflict.
	UpdateWithLock(ctx context.Context, id uuid.UUID, mutate UserMutator) (*types.User, error)
	MarkDeceased(ctx context.Context, id uuid.UUID) (*types.User, error)
	ByNameAndFirstName(ctx context.Context, name, firstName string) ([]*types.User, error)
	WomenInCity(ctx context.Context, city string) ([]*types.User, error)
}

type userService struct {
	db             *gorm.DB
	log            *logger.Logger
	policy         RetryPolicy
	userRepo       repos.UserRepo
	addressService AddressService
}

func NewUserService(db *gorm.DB, log *logger.Logger, policy RetryPolicy, userRepo repos.UserRepo, addressService AddressService) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:             db,
		log:            serviceLog,
		policy:         policy,
		userRepo:       userRepo,
		addressService: addressService,
	}
}

func validateUserInput(in UserInput) error {
	if normalization.NormalizeField(in.Name) == "" {
		return apierr.Validation("user name is required")
	}
	if normalization.NormalizeField(in.FirstName) == "" {
		return apierr.Validation("user first name is required")
	}
	if !in.Gender.Valid() {
		return apierr.Validation("invalid gender: %q", in.Gender)
	}
	return nil
}

func (us *userService) Create(ctx context.Context, in UserInput) (*types.User, error) {
	if err := validateUserInput(in); err != nil {
		return nil, err
	}
	var created *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addr, err := us.addressService.FindOrCreate(ctx, tx, in.Address)
		if err != nil {
			return err
		}
		user := &types.User{
			Name:      in.Name,
			FirstName: in.FirstName,
			Age:       in.Age,
			Gender:    in.Gender,
			AddressID: addr.ID,
		}
		saved, err := us.userRepo.Create(ctx, tx, user)
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

func (us *userService) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("user not found: %s", id)
		}
		return nil, apierr.Storage(err)
	}
	return user, nil
}

func (us *userService) Update(ctx context.Context, id uuid.UUID, in UserInput) (*types.User, error) {
	if err := validateUserInput(in); err != nil {
		return nil, err
	}
	return us.UpdateWithLock(ctx, id, func(ctx context.Context, tx *gorm.DB, user *types.User) error {
		addr, err := us.addressService.FindOrCreate(ctx, tx, in.Address)
		if err != nil {
			return err
		}
		user.Name = in.Name
		user.FirstName = in.FirstName
		user.Age = in.Age
		user.Gender = in.Gender
		user.AddressID = addr.ID
		user.Address = addr
		return nil
	})
}

func (us *userService) UpdateWithLock(ctx context.Context, id uuid.UUID, mutate UserMutator) (*types.User, error) {
	var updated *types.User
	err := withLockRetry(ctx, us.log, us.policy, func(attempt int) error {
		return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := us.userRepo.LockForUpdate(ctx, tx, id, us.policy.LockTimeout)
			if err != nil {
				if repos.IsNotFound(err) {
					return apierr.NotFound("user not found: %s", id)
				}
				if repos.IsLockBusy(err) {
					return apierr.Busy(err)
				}
				return apierr.Storage(err)
			}
			if err := mutate(ctx, tx, locked); err != nil {
				return err
			}
			saved, err := us.userRepo.Save(ctx, tx, locked)
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

func (us *userService) MarkDeceased(ctx context.Context, id uuid.UUID) (*types.User, error) {
	// One-way transition: the flag is only ever set, never cleared.
	return us.UpdateWithLock(ctx, id, func(ctx context.Context, tx *gorm.DB, user *types.User) error {
		user.IsDeceased = true
		return nil
	})
}

func (us *userService) ByNameAndFirstName(ctx context.Context, name, firstName string) ([]*types.User, error) {
	results, err := us.userRepo.FindByNameAndFirstName(ctx, nil, name, firstName)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return results, nil
}

func (us *userService) WomenInCity(ctx context.Context, city string) ([]*types.User, error) {
	results, err := us.userRepo.FindByGenderAndCity(ctx, nil, types.GenderFemale, normalization.NormalizeField(city))
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return results, nil
}
