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

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
	// LockForUpdate acquires an exclusive row lock with a bounded wait. It
	// must run inside an open transaction; the lock is held until that
	// transaction ends. Missing rows surface as gorm.ErrRecordNotFound and
	// contention as a driver busy error (see IsLockBusy).
	LockForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, timeout time.Duration) (*types.User, error)
	Save(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	FindByNameAndFirstName(ctx context.Context, tx *gorm.DB, name, firstName string) ([]*types.User, error)
	FindByGenderAndCity(ctx context.Context, tx *gorm.DB, gender types.Gender, city string) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var user types.User
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepo) LockForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, timeout time.Duration) (*types.User, error) {
	q, err := lockedQuery(ctx, tx, timeout)
	if err != nil {
		return nil, err
	}
	var user types.User
	if err := q.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ur *userRepo) FindByNameAndFirstName(ctx context.Context, tx *gorm.DB, name, firstName string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Where("name = ? AND first_name = ?", name, firstName).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) FindByGenderAndCity(ctx context.Context, tx *gorm.DB, gender types.Gender, city string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if err := transaction.WithContext(ctx).
		Preload("Address").
		Joins("JOIN address a ON a.id = users.address_id").
		Where("users.gender = ?", gender).
		Where("LOWER(a.city) = LOWER(?)", city).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
