package catalog

import (
	"context"
	"errors"

	"proof-of-learning-go/internal/model"
)

var ErrCourseNotFound = errors.New("course not found")

// Source provides the read-only course catalog.
type Source interface {
	Courses(ctx context.Context) ([]model.Course, error)
	Course(ctx context.Context, id string) (model.Course, error)
	Modules(ctx context.Context, courseID string) ([]model.ModuleInfo, error)
}

// DefaultModules is used for courses without a module outline of their own.
func DefaultModules() []model.ModuleInfo {
	return []model.ModuleInfo{
		{ID: 1, Title: "Module 1", Description: "Introduction and basics"},
		{ID: 2, Title: "Module 2", Description: "Core concepts"},
		{ID: 3, Title: "Module 3", Description: "Advanced topics"},
		{ID: 4, Title: "Module 4", Description: "Project and assessment"},
	}
}
