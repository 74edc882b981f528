package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mahora/task-tracker/internal/dto"
	apierrors "github.com/mahora/task-tracker/internal/errors"
	"github.com/mahora/task-tracker/internal/middleware"
	"github.com/mahora/task-tracker/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns every task with assignee and creator names
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context())
	if err != nil {
		h.logStoreError(c, "failed to list tasks", err)
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.taskService.CreateTask(c.Request.Context(), toTaskInput(req)); err != nil {
		h.respondTaskError(c, "failed to create task", "Failed to create task", err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{
		Success: true,
		Message: "Task created successfully",
	})
}

// UpdateTask replaces every field of an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	matched, err := h.taskService.UpdateTask(c.Request.Context(), taskID, toTaskInput(req))
	if err != nil {
		h.respondTaskError(c, "failed to update task", "Failed to update task", err)
		return
	}

	message := "Task updated successfully"
	if !matched {
		message = "No task matched; nothing was updated"
	}
	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: message,
		Matched: &matched,
	})
}

// DeleteTask deletes a task. An unknown ID still answers success.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	matched, err := h.taskService.DeleteTask(c.Request.Context(), taskID)
	if err != nil {
		h.logStoreError(c, "failed to delete task", err)
		apierrors.InternalError(c, "Failed to delete task")
		return
	}

	message := "Task deleted successfully"
	if !matched {
		message = "No task matched; nothing was deleted"
	}
	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: message,
		Matched: &matched,
	})
}

func (h *TaskHandler) respondTaskError(c *gin.Context, logMsg, clientMsg string, err error) {
	var unknown *services.UnknownUserError
	var tooLong *services.FieldTooLongError
	switch {
	case errors.Is(err, services.ErrNameRequired):
		apierrors.MissingField(c, "The 'name' field is required")
	case errors.As(err, &tooLong):
		apierrors.BadRequest(c, tooLong.Error())
	case errors.As(err, &unknown):
		apierrors.UnknownUser(c, unknown.Error())
	default:
		h.logStoreError(c, logMsg, err)
		apierrors.InternalError(c, clientMsg)
	}
}

func (h *TaskHandler) logStoreError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg,
		"request_id", middleware.GetRequestID(c),
		"error", err,
	)
}

func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func toTaskInput(req dto.TaskRequest) services.TaskInput {
	return services.TaskInput{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		AssigneeName: deref(req.AssigneeName),
		CreatorName:  deref(req.CreatorName),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
