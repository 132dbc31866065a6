package user

import (
	"time"

	"autoposter-api/internal/common"
)

// User is the identity-provider record for an account holder. Rows are
// upserted on login and never deleted.
type User struct {
	ID              common.UserID `gorm:"type:varchar(255);primaryKey" json:"id"`
	Email           *string       `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FirstName       *string       `gorm:"type:varchar(255)" json:"firstName"`
	LastName        *string       `gorm:"type:varchar(255)" json:"lastName"`
	ProfileImageURL *string       `gorm:"type:varchar(1024)" json:"profileImageUrl"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// MutableColumns lists the columns an upsert overwrites on conflict.
func MutableColumns() []string {
	return []string{"email", "first_name", "last_name", "profile_image_url", "updated_at"}
}
