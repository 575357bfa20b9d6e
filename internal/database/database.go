package database

import (
	"context"
	"database/sql"
	"fmt"

	"proof-of-learning-go/internal/catalog"
	"proof-of-learning-go/internal/model"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// Client is a PostgreSQL backed course catalog.
type Client interface {
	catalog.Source
	Close()
}

type client struct {
	db *sql.DB
}

func NewClient(connStr string) (Client, error) {
	db, err := sql.Open("postgres", connStr)

	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &client{db: db}, nil
}

func (c *client) Close() {
	err := c.db.Close()
	if err != nil {
		log.Errorf("closing database: %v", err)
	}
}

func (c *client) Courses(ctx context.Context) ([]model.Course, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, title, description, category, duration, modules, image_url, level FROM courses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}

	return courses, nil
}

func (c *client) Course(ctx context.Context, id string) (model.Course, error) {
	query := `SELECT id, title, description, category, duration, modules, image_url, level FROM courses WHERE id = $1`
	course, err := scanCourse(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Course{}, fmt.Errorf("%w: %s", catalog.ErrCourseNotFound, id)
		}
		return model.Course{}, fmt.Errorf("querying for course by id: %w", err)
	}

	return course, nil
}

func (c *client) Modules(ctx context.Context, courseID string) ([]model.ModuleInfo, error) {
	query := `SELECT module_id, title, description FROM course_modules WHERE course_id = $1 ORDER BY module_id`
	rows, err := c.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying modules for course %s: %w", courseID, err)
	}
	defer rows.Close()

	var modules []model.ModuleInfo
	for rows.Next() {
		var m model.ModuleInfo
		if err := rows.Scan(&m.ID, &m.Title, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}

	if len(modules) == 0 {
		return catalog.DefaultModules(), nil
	}

	return modules, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(s scanner) (model.Course, error) {
	var course model.Course
	var level string
	err := s.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.Duration, &course.Modules, &course.ImageURL, &level)
	if err != nil {
		return model.Course{}, err
	}
	course.Level = model.Level(level)
	return course, nil
}
