package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PetType string

const (
	PetTypeDog   PetType = "DOG"
	PetTypeCat   PetType = "CAT"
	PetTypeBird  PetType = "BIRD"
	PetTypeOther PetType = "OTHER"
)

func (p PetType) Valid() bool {
	switch p {
	case PetTypeDog, PetTypeCat, PetTypeBird, PetTypeOther:
		return true
	}
	return false
}

type Pet struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Age        int       `gorm:"column:age" json:"age"`
	Type       PetType   `gorm:"column:type" json:"type"`
	AddressID  uuid.UUID `gorm:"type:uuid;not null;column:address_id" json:"address_id"`
	Address    *Address  `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	IsDeceased bool      `gorm:"not null;default:false;column:is_deceased" json:"is_deceased"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Pet) TableName() string {
	return "pet"
}

func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
