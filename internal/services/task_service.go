package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mahora/task-tracker/internal/constants"
	"github.com/mahora/task-tracker/internal/models"
	"github.com/mahora/task-tracker/internal/repository"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrFieldTooLong = errors.New("field too long")
	ErrUnknownUser  = errors.New("user not found")
)

// FieldTooLongError reports a value wider than its tasks column.
type FieldTooLongError struct {
	Field string
	Max   int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("'%s' must be at most %d characters", e.Field, e.Max)
}

// Is makes errors.Is(err, ErrFieldTooLong) match.
func (e *FieldTooLongError) Is(target error) bool {
	return target == ErrFieldTooLong
}

// UnknownUserError reports a supplied assignee or creator name that matched no
// user while the service runs with PolicyFailClosed.
type UnknownUserError struct {
	Field string
	Name  string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("%s %q does not match any user", e.Field, e.Name)
}

// Is makes errors.Is(err, ErrUnknownUser) match.
func (e *UnknownUserError) Is(target error) bool {
	return target == ErrUnknownUser
}

// UnresolvedNamePolicy decides what happens to a supplied name that matches
// no user.
type UnresolvedNamePolicy int

const (
	// PolicyFailOpen stores a null reference and lets the write proceed.
	PolicyFailOpen UnresolvedNamePolicy = iota
	// PolicyFailClosed rejects the write with an UnknownUserError.
	PolicyFailClosed
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	resolver *DirectoryResolver
	policy   UnresolvedNamePolicy
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, resolver *DirectoryResolver, policy UnresolvedNamePolicy) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		resolver: resolver,
		policy:   policy,
	}
}

// TaskInput is the full field set accepted by create and update. Dates are
// opaque strings and are stored exactly as given.
type TaskInput struct {
	Name         string
	Description  *string
	StartDate    *string
	EndDate      *string
	AssigneeName string
	CreatorName  string
}

// ListTasks returns every task with assignee and creator names
func (s *TaskService) ListTasks(ctx context.Context) ([]repository.TaskWithNames, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask resolves the assignee and creator names, then inserts the task.
// Nothing is written if either lookup fails.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	task, err := s.buildTask(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask replaces every field of the task with taskID. There is no
// existence check: matched is false when no row had that ID.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input TaskInput) (bool, error) {
	if err := validateInput(input); err != nil {
		return false, err
	}

	task, err := s.buildTask(ctx, input)
	if err != nil {
		return false, err
	}
	task.ID = taskID

	matched, err := s.taskRepo.Replace(ctx, task)
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}

	return matched, nil
}

// DeleteTask removes the task with taskID. matched is false when no row had
// that ID.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) (bool, error) {
	matched, err := s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return matched, nil
}

// validateInput checks the fields the store would otherwise reject.
// Assignee and creator names are not checked: an overlong name simply
// matches no user.
func validateInput(input TaskInput) error {
	if input.Name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(input.Name) > constants.MaxNameLength {
		return &FieldTooLongError{Field: "name", Max: constants.MaxNameLength}
	}
	if input.StartDate != nil && utf8.RuneCountInString(*input.StartDate) > constants.MaxDateLength {
		return &FieldTooLongError{Field: "startDate", Max: constants.MaxDateLength}
	}
	if input.EndDate != nil && utf8.RuneCountInString(*input.EndDate) > constants.MaxDateLength {
		return &FieldTooLongError{Field: "endDate", Max: constants.MaxDateLength}
	}
	return nil
}

func (s *TaskService) buildTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	assignee, creator, err := s.resolveUsers(ctx, input.AssigneeName, input.CreatorName)
	if err != nil {
		return nil, err
	}

	if s.policy == PolicyFailClosed {
		if assignee.State == NotFound {
			return nil, &UnknownUserError{Field: "assignee", Name: input.AssigneeName}
		}
		if creator.State == NotFound {
			return nil, &UnknownUserError{Field: "creator", Name: input.CreatorName}
		}
	}

	return &models.Task{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		AssigneeID:  assignee.Ref(),
		CreatorID:   creator.Ref(),
	}, nil
}

// resolveUsers resolves both names concurrently. Neither depends on the other.
func (s *TaskService) resolveUsers(ctx context.Context, assigneeName, creatorName string) (Resolution, Resolution, error) {
	var assignee, creator Resolution

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.resolver.Resolve(gctx, assigneeName)
		if err != nil {
			return fmt.Errorf("failed to resolve assignee: %w", err)
		}
		assignee = r
		return nil
	})
	g.Go(func() error {
		r, err := s.resolver.Resolve(gctx, creatorName)
		if err != nil {
			return fmt.Errorf("failed to resolve creator: %w", err)
		}
		creator = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return Resolution{}, Resolution{}, err
	}
	return assignee, creator, nil
}
