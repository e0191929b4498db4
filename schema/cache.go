package schema

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/metrics"
)

// CourseNameCache resolves the offering name of a course, ie "2012_Fall",
// from the course's canonical record. Each course is looked up at most once
// for the lifetime of the cache, even when requested concurrently.
type CourseNameCache struct {
	store content.Store

	mu    sync.RWMutex
	names map[string]string
	group singleflight.Group
}

// NewCourseNameCache returns an empty cache backed by store.
func NewCourseNameCache(store content.Store) *CourseNameCache {
	return &CourseNameCache{
		store: store,
		names: make(map[string]string),
	}
}

// Name returns the offering name of course.
func (c *CourseNameCache) Name(ctx context.Context, course string) (string, error) {
	if name, ok := c.cached(course); ok {
		metrics.CourseNameLookupsTotal.WithLabelValues("hit").Inc()
		return name, nil
	}

	v, err, _ := c.group.Do(course, func() (interface{}, error) {
		// Another caller may have filled the entry since the check above.
		if name, ok := c.cached(course); ok {
			return name, nil
		}

		metrics.CourseNameLookupsTotal.WithLabelValues("miss").Inc()

		record, err := c.store.CourseRecord(ctx, course)
		if err != nil {
			return "", err
		}

		if record.Location.Name == "" {
			return "", fmt.Errorf("course %q: %w", course, content.ErrMissingCourse)
		}

		c.mu.Lock()
		c.names[course] = record.Location.Name
		c.mu.Unlock()

		return record.Location.Name, nil
	})
	if err != nil {
		return "", fmt.Errorf("course name: %w", err)
	}

	return v.(string), nil
}

// Len returns the number of cached courses.
func (c *CourseNameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.names)
}

func (c *CourseNameCache) cached(course string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, ok := c.names[course]

	return name, ok
}
