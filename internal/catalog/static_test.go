package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCourses(t *testing.T) {
	s := NewStatic()

	courses, err := s.Courses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 6)

	for _, c := range courses {
		assert.Equal(t, 4, c.Modules, c.ID)
	}
}

func TestStaticCourseByID(t *testing.T) {
	s := NewStatic()

	course, err := s.Course(context.Background(), "iota-basics")
	require.NoError(t, err)
	assert.Equal(t, "IOTA Fundamentals", course.Title)

	_, err = s.Course(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestStaticModules(t *testing.T) {
	s := NewStatic()

	modules, err := s.Modules(context.Background(), "move-programming")
	require.NoError(t, err)
	require.Len(t, modules, 4)
	assert.Equal(t, "Move Language Basics", modules[0].Title)

	modules, err = s.Modules(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, DefaultModules(), modules)
}

func TestStaticCoursesReturnsCopy(t *testing.T) {
	s := NewStatic()

	courses, _ := s.Courses(context.Background())
	courses[0].Title = "changed"

	again, _ := s.Courses(context.Background())
	assert.Equal(t, "IOTA Fundamentals", again[0].Title)
}
