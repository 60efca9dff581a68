package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

// storeSuite opens a fresh database file for every test
type storeSuite struct {
	suite.Suite

	ctx        context.Context
	db         *DB
	tasks      *TaskRepo
	categories *CategoryRepo
	tags       *TagRepo
	projects   *ProjectRepo
	settings   *SettingsRepo
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = openTestDB(s.T())
	s.tasks = NewTaskRepo(s.db)
	s.categories = NewCategoryRepo(s.db)
	s.tags = NewTagRepo(s.db)
	s.projects = NewProjectRepo(s.db)
	s.settings = NewSettingsRepo(s.db)
}

func (s *storeSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

// exec runs raw SQL, e.g. to install failure-injection triggers
func (s *storeSuite) exec(query string, args ...any) {
	_, err := s.db.ExecContext(s.ctx, query, args...)
	s.Require().NoError(err)
}

func (s *storeSuite) newTask(title string, opts ...func(*models.NewTask)) int64 {
	in := models.NewTask{Title: title, Priority: models.PriorityMedium, Status: models.StatusPending}
	for _, opt := range opts {
		opt(&in)
	}
	res, err := s.tasks.Insert(s.ctx, in)
	s.Require().NoError(err)
	return res.ID
}

func (s *storeSuite) newCategory(name string) int64 {
	res, err := s.categories.Insert(s.ctx, models.Category{Name: name, Color: "#ff0000"})
	s.Require().NoError(err)
	return res.ID
}

func (s *storeSuite) newTag(name string) int64 {
	res, err := s.tags.Insert(s.ctx, models.Tag{Name: name, Color: "#00ff00"})
	s.Require().NoError(err)
	return res.ID
}

func (s *storeSuite) task(id int64) *models.Task {
	t, err := s.tasks.GetByID(s.ctx, id)
	s.Require().NoError(err)
	return t
}

func (s *storeSuite) count(table string) int {
	var n int
	s.Require().NoError(s.db.GetContext(s.ctx, &n, "SELECT COUNT(*) FROM "+table))
	return n
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), FileName), zap.NewNop())
	require.NoError(t, err)
	db.now = steppingClock()
	return db
}

// steppingClock advances one second per call so created_at ordering is stable
func steppingClock() func() time.Time {
	next := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		next = next.Add(time.Second)
		return next
	}
}

func ptr[T any](v T) *T {
	return &v
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func withCategory(id int64) func(*models.NewTask) {
	return func(t *models.NewTask) { t.CategoryID = &id }
}

func withStatus(status models.TaskStatus) func(*models.NewTask) {
	return func(t *models.NewTask) { t.Status = status }
}

func withPriority(p models.Priority) func(*models.NewTask) {
	return func(t *models.NewTask) { t.Priority = p }
}
