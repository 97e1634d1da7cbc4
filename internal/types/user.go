package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	FirstName  string    `gorm:"not null;column:first_name" json:"first_name"`
	Age        int       `gorm:"column:age" json:"age"`
	Gender     Gender    `gorm:"column:gender" json:"gender"`
	AddressID  uuid.UUID `gorm:"type:uuid;not null;column:address_id" json:"address_id"`
	Address    *Address  `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	IsDeceased bool      `gorm:"not null;default:false;column:is_deceased" json:"is_deceased"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
