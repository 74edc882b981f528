package services

import (
	"context"
	"fmt"

	"github.com/mahora/task-tracker/internal/repository"
)

// ResolutionState tells how a display name resolved.
type ResolutionState int

const (
	// NotSupplied means the caller gave no name at all.
	NotSupplied ResolutionState = iota
	// NotFound means a name was given but no user has it.
	NotFound
	// Resolved means the name matched a user.
	Resolved
)

func (s ResolutionState) String() string {
	switch s {
	case NotSupplied:
		return "not_supplied"
	case NotFound:
		return "not_found"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("ResolutionState(%d)", int(s))
	}
}

// Resolution is the outcome of resolving one display name.
type Resolution struct {
	State  ResolutionState
	UserID uint64
}

// Ref returns the user ID to store, or nil unless the name resolved.
func (r Resolution) Ref() *uint64 {
	if r.State != Resolved {
		return nil
	}
	id := r.UserID
	return &id
}

// DirectoryResolver maps display names to user IDs. It holds no state and
// never caches, so every call sees the directory as it is at that moment.
type DirectoryResolver struct {
	userRepo repository.UserRepository
}

// NewDirectoryResolver creates a new DirectoryResolver
func NewDirectoryResolver(userRepo repository.UserRepository) *DirectoryResolver {
	return &DirectoryResolver{userRepo: userRepo}
}

// Resolve looks up name by exact match. An empty name is NotSupplied and does
// not reach the store. When several users share the name the lowest ID wins.
// A non-nil error means the lookup itself failed, which is distinct from
// NotFound.
func (d *DirectoryResolver) Resolve(ctx context.Context, name string) (Resolution, error) {
	if name == "" {
		return Resolution{State: NotSupplied}, nil
	}

	id, found, err := d.userRepo.FindIDByName(ctx, name)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to look up user %q: %w", name, err)
	}
	if !found {
		return Resolution{State: NotFound}, nil
	}

	return Resolution{State: Resolved, UserID: id}, nil
}
