package repository

import (
	"context"

	"github.com/mahora/task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// List retrieves all tasks. Dangling user references yield nil names rather
// than dropping the row.
func (r *GormTaskRepository) List(ctx context.Context) ([]TaskWithNames, error) {
	tasks := []TaskWithNames{}

	err := r.db.WithContext(ctx).
		Table("tasks AS t").
		Select("t.id, t.name, t.description, t.start_date, t.end_date, t.assignee_id, t.creator_id, " +
			"ua.name AS assignee_name, uc.name AS creator_name").
		Joins("LEFT JOIN users ua ON t.assignee_id = ua.id").
		Joins("LEFT JOIN users uc ON t.creator_id = uc.id").
		Order("t.id").
		Scan(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Replace writes every column, nulls included, of the task with task.ID
func (r *GormTaskRepository) Replace(ctx context.Context, task *models.Task) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"name":        task.Name,
			"description": task.Description,
			"start_date":  task.StartDate,
			"end_date":    task.EndDate,
			"assignee_id": task.AssigneeID,
			"creator_id":  task.CreatorID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
