package entities

import "time"

// DefaultCollectionColor is applied when a collection is created without a color.
const DefaultCollectionColor = "gray"

type Collection struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	UserID      string    `gorm:"index;size:255;not null" json:"user_id" bson:"userId"`
	Name        string    `gorm:"index;size:256;not null" json:"name" bson:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty" bson:"description,omitempty"`
	Color       string    `gorm:"size:32;default:'gray'" json:"color" bson:"color"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updatedAt"`
}

func (Collection) TableName() string {
	return "collections"
}
