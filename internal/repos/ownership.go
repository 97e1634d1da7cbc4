package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type OwnershipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ownership *types.UserPetOwnership) (*types.UserPetOwnership, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserPetOwnership, error)
	GetByPetID(ctx context.Context, tx *gorm.DB, petID uuid.UUID) ([]*types.UserPetOwnership, error)
	// FindDistinctUsersByPetTypeAndCity resolves the inverse join at the
	// store: distinct living users linked to a living pet of the given type
	// whose address is in the given city (case-insensitive).
	FindDistinctUsersByPetTypeAndCity(ctx context.Context, tx *gorm.DB, petType types.PetType, city string) ([]*types.User, error)
}

type ownershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOwnershipRepo(db *gorm.DB, baseLog *logger.Logger) OwnershipRepo {
	repoLog := baseLog.With("repo", "OwnershipRepo")
	return &ownershipRepo{db: db, log: repoLog}
}

func (or *ownershipRepo) Create(ctx context.Context, tx *gorm.DB, ownership *types.UserPetOwnership) (*types.UserPetOwnership, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(ownership).Error; err != nil {
		return nil, err
	}
	return ownership, nil
}

func (or *ownershipRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserPetOwnership, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.UserPetOwnership
	if err := transaction.WithContext(ctx).
		Preload("Pet").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *ownershipRepo) GetByPetID(ctx context.Context, tx *gorm.DB, petID uuid.UUID) ([]*types.UserPetOwnership, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.UserPetOwnership
	if err := transaction.WithContext(ctx).
		Preload("User").
		Where("pet_id = ?", petID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *ownershipRepo) FindDistinctUsersByPetTypeAndCity(ctx context.Context, tx *gorm.DB, petType types.PetType, city string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.User
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Distinct("users.*").
		Joins("JOIN user_pet_ownership o ON o.user_id = users.id").
		Joins("JOIN pet p ON p.id = o.pet_id").
		Joins("JOIN address a ON a.id = p.address_id").
		Where("p.type = ?", petType).
		Where("LOWER(a.city) = LOWER(?)", city).
		Where("users.is_deceased = ?", false).
		Where("p.is_deceased = ?", false).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
