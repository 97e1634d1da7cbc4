package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address rows are immutable once persisted and shared by any number of
// users and pets. The four field columns always hold normalized values and
// are jointly unique.
type Address struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	City        string    `gorm:"not null;column:city;uniqueIndex:idx_address_identity" json:"city"`
	Type        string    `gorm:"not null;column:type;uniqueIndex:idx_address_identity" json:"type"`
	AddressName string    `gorm:"not null;column:address_name;uniqueIndex:idx_address_identity" json:"address_name"`
	Number      string    `gorm:"not null;column:number;uniqueIndex:idx_address_identity" json:"number"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Address) TableName() string {
	return "address"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
