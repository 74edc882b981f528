package models

// Task is a tracked unit of work. AssigneeID and CreatorID are weak references
// to users.id: they are resolved from display names at write time and are not
// enforced by a foreign key. Indexes are created by database.AddIndexes.
type Task struct {
	ID          uint64  `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	StartDate   *string `gorm:"type:varchar(32)" json:"start_date"`
	EndDate     *string `gorm:"type:varchar(32)" json:"end_date"`
	AssigneeID  *uint64 `json:"assignee_id"`
	CreatorID   *uint64 `json:"creator_id"`
}
