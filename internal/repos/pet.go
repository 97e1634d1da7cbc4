package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type PetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pet *types.Pet) (*types.Pet, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Pet, error)
	// LockForUpdate: same contract as UserRepo.LockForUpdate.
	LockForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, timeout time.Duration) (*types.Pet, error)
	Save(ctx context.Context, tx *gorm.DB, pet *types.Pet) (*types.Pet, error)
	FindByType(ctx context.Context, tx *gorm.DB, petType types.PetType) ([]*types.Pet, error)
	// FindAliveByCity returns non-deceased pets whose address is in the
	// given city (case-insensitive).
	FindAliveByCity(ctx context.Context, tx *gorm.DB, city string) ([]*types.Pet, error)
}

type petRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPetRepo(db *gorm.DB, baseLog *logger.Logger) PetRepo {
	repoLog := baseLog.With("repo", "PetRepo")
	return &petRepo{db: db, log: repoLog}
}

func (pr *petRepo) Create(ctx context.Context, tx *gorm.DB, pet *types.Pet) (*types.Pet, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(pet).Error; err != nil {
		return nil, err
	}
	return pet, nil
}

func (pr *petRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Pet, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var pet types.Pet
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Where("id = ?", id).
		First(&pet).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (pr *petRepo) LockForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, timeout time.Duration) (*types.Pet, error) {
	q, err := lockedQuery(ctx, tx, timeout)
	if err != nil {
		return nil, err
	}
	var pet types.Pet
	if err := q.Where("id = ?", id).First(&pet).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (pr *petRepo) Save(ctx context.Context, tx *gorm.DB, pet *types.Pet) (*types.Pet, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Save(pet).Error; err != nil {
		return nil, err
	}
	return pet, nil
}

func (pr *petRepo) FindByType(ctx context.Context, tx *gorm.DB, petType types.PetType) ([]*types.Pet, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Pet
	if err := transaction.WithContext(ctx).
		Where("type = ?", petType).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *petRepo) FindAliveByCity(ctx context.Context, tx *gorm.DB, city string) ([]*types.Pet, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Pet
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Joins("JOIN address a ON a.id = pet.address_id").
		Where("LOWER(a.city) = LOWER(?)", city).
		Where("pet.is_deceased = ?", false).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
