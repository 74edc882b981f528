package dto

import (
	"github.com/mahora/task-tracker/internal/models"
	"github.com/mahora/task-tracker/internal/repository"
)

// UserDTO represents a user in API responses. It never carries the credential.
type UserDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	CredentialID     string `json:"credentialId"`
	CredentialSecret string `json:"credentialSecret"`
}

// LoginResponse is returned by POST /login
type LoginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    *UserDTO `json:"user,omitempty"`
}

// TaskRequest is the body of POST /tareas and PUT /tareas/:id.
// Assignee and creator are given by display name.
type TaskRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	AssigneeName *string `json:"assigneeName"`
	CreatorName  *string `json:"creatorName"`
}

// TaskDTO represents a task in list responses, with user names joined in
type TaskDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Assignee    *string `json:"assignee"`
	Creator     *string `json:"creator"`
}

// MessageResponse acknowledges a write. Matched is set on update and delete
// to tell a real change from a no-op on an unknown ID.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Matched *bool  `json:"matched,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	}
}

// ToTaskDTO converts a joined task row to TaskDTO
func ToTaskDTO(task repository.TaskWithNames) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Assignee:    task.AssigneeName,
		Creator:     task.CreatorName,
	}
}

// ToTaskDTOs converts joined task rows, never returning nil
func ToTaskDTOs(tasks []repository.TaskWithNames) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
