package db

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tgienger/tasknest/internal/models"
)

type TagRepoSuite struct {
	storeSuite
}

func TestTagRepo(t *testing.T) {
	suite.Run(t, new(TagRepoSuite))
}

func (s *TagRepoSuite) usage(tagID int64) int {
	tag, err := s.tags.GetByID(s.ctx, tagID)
	s.Require().NoError(err)
	return tag.UsageCount
}

func (s *TagRepoSuite) TestInsertStartsUnused() {
	id := s.newTag("urgent")
	s.Equal(0, s.usage(id))

	_, err := s.tags.Insert(s.ctx, models.Tag{Name: " ", Color: "#000000"})
	s.ErrorIs(err, models.ErrValidation)
}

func (s *TagRepoSuite) TestAddTagToTaskIsIdempotent() {
	task := s.newTask("task")
	tag := s.newTag("home")

	n, err := s.tags.AddTagToTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.tags.AddTagToTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.Zero(n)

	s.Equal(1, s.count("task_tags"))
	s.Equal(1, s.usage(tag))

	tags, err := s.tags.GetForTask(s.ctx, task)
	s.Require().NoError(err)
	s.Require().Len(tags, 1)
	s.Equal(tag, tags[0].ID)
}

func (s *TagRepoSuite) TestRemoveTagFromTask() {
	task := s.newTask("task")
	tag := s.newTag("home")
	_, err := s.tags.AddTagToTask(s.ctx, task, tag)
	s.Require().NoError(err)
	_, err = s.tags.AddTagToTask(s.ctx, s.newTask("other"), tag)
	s.Require().NoError(err)
	s.Equal(2, s.usage(tag))

	n, err := s.tags.RemoveTagFromTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal(1, s.usage(tag))

	// Nothing removed, nothing decremented.
	n, err = s.tags.RemoveTagFromTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.Zero(n)
	s.Equal(1, s.usage(tag))
}

func (s *TagRepoSuite) TestUsageCountFloorsAtZero() {
	task := s.newTask("task")
	tag := s.newTag("home")
	_, err := s.tags.AddTagToTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.exec("UPDATE tags SET usage_count = 0 WHERE id = ?", tag)

	_, err = s.tags.RemoveTagFromTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.Equal(0, s.usage(tag))
}

func (s *TagRepoSuite) TestAddRollsBackWhenCounterFails() {
	task := s.newTask("task")
	tag := s.newTag("home")
	s.exec(`CREATE TRIGGER fail_count BEFORE UPDATE OF usage_count ON tags
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)

	_, err := s.tags.AddTagToTask(s.ctx, task, tag)
	s.Require().Error(err)
	s.Equal(0, s.count("task_tags"))
}

func (s *TagRepoSuite) TestUpdate() {
	id := s.newTag("old")

	_, err := s.tags.Update(s.ctx, id, models.TagPatch{})
	s.ErrorIs(err, models.ErrNoFieldsToUpdate)

	_, err = s.tags.Update(s.ctx, id, models.TagPatch{Name: ptr("new")})
	s.Require().NoError(err)

	got, err := s.tags.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("new", got.Name)
	s.Equal("#00ff00", got.Color)
}

func (s *TagRepoSuite) TestDeleteRemovesAssociations() {
	task := s.newTask("task")
	keep := s.newTag("keep")
	drop := s.newTag("drop")
	for _, tag := range []int64{keep, drop} {
		_, err := s.tags.AddTagToTask(s.ctx, task, tag)
		s.Require().NoError(err)
	}

	n, err := s.tags.Delete(s.ctx, drop)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	tags, err := s.tags.GetForTask(s.ctx, task)
	s.Require().NoError(err)
	s.Require().Len(tags, 1)
	s.Equal(keep, tags[0].ID)
	s.Equal(1, s.count("tasks"))
}

func (s *TagRepoSuite) TestDeleteRollsBack() {
	task := s.newTask("task")
	tag := s.newTag("stuck")
	_, err := s.tags.AddTagToTask(s.ctx, task, tag)
	s.Require().NoError(err)
	s.exec(`CREATE TRIGGER fail_delete BEFORE DELETE ON tags
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)

	_, err = s.tags.Delete(s.ctx, tag)
	s.Require().Error(err)
	s.Equal(1, s.count("task_tags"))
	s.Equal(1, s.count("tags"))
}

func (s *TagRepoSuite) TestGetAllByName() {
	s.newTag("zeta")
	s.newTag("alpha")

	tags, err := s.tags.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tags, 2)
	s.Equal("alpha", tags[0].Name)
	s.Equal("zeta", tags[1].Name)
}
