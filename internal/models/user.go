package models

// User is an account created out of band. Tasks reference users by ID only.
// Name and email lookups are indexed by database.AddIndexes.
type User struct {
	ID         uint64 `gorm:"primarykey" json:"id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Email      string `gorm:"type:varchar(255);not null" json:"email"`
	Credential string `gorm:"type:varchar(255);not null" json:"-"`
	Role       string `gorm:"type:varchar(50)" json:"role"`
}
