package repository

import (
	"context"

	"github.com/mahora/task-tracker/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// List retrieves every task with assignee and creator names joined in
	List(ctx context.Context) ([]TaskWithNames, error)

	// Create inserts a new task and sets its ID
	Create(ctx context.Context, task *models.Task) error

	// Replace overwrites every column of the task identified by task.ID and
	// reports whether a row matched
	Replace(ctx context.Context, task *models.Task) (bool, error)

	// Delete removes a task and reports whether a row matched
	Delete(ctx context.Context, id uint64) (bool, error)
}

// TaskWithNames is a task row annotated with the display names of its
// assignee and creator. A name is nil when the reference is null or no longer
// resolves to a user.
type TaskWithNames struct {
	ID           uint64
	Name         string
	Description  *string
	StartDate    *string
	EndDate      *string
	AssigneeID   *uint64
	CreatorID    *uint64
	AssigneeName *string
	CreatorName  *string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByEmail finds a user by login email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindIDByName returns the ID of the first user, by ID, whose display name
	// equals name. found is false when no user matches.
	FindIDByName(ctx context.Context, name string) (id uint64, found bool, err error)
}
