package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPetOwnership links one user to one pet. The (user_id, pet_id) pair is
// unique; rows are created only after the co-location check and are never
// mutated or deleted.
type UserPetOwnership struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_ownership_user_pet" json:"user_id"`
	PetID     uuid.UUID `gorm:"type:uuid;not null;column:pet_id;uniqueIndex:idx_ownership_user_pet" json:"pet_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Pet       *Pet      `gorm:"foreignKey:PetID" json:"pet,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserPetOwnership) TableName() string {
	return "user_pet_ownership"
}

func (o *UserPetOwnership) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
