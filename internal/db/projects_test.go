package db

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tgienger/tasknest/internal/models"
)

type ProjectRepoSuite struct {
	storeSuite
}

func TestProjectRepo(t *testing.T) {
	suite.Run(t, new(ProjectRepoSuite))
}

func (s *ProjectRepoSuite) newProject(name string) int64 {
	res, err := s.projects.Insert(s.ctx, models.Project{Name: name})
	s.Require().NoError(err)
	return res.ID
}

func (s *ProjectRepoSuite) TestInsertDefaultsAndOrder() {
	first := s.newProject("Garden")
	res, err := s.projects.Insert(s.ctx, models.Project{
		Name:      "Move house",
		Status:    models.ProjectInProgress,
		StartDate: ptr("2026-03-01"),
		Color:     ptr("#336699"),
	})
	s.Require().NoError(err)

	projects, err := s.projects.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(projects, 2)
	s.Equal(res.ID, projects[0].ID)
	s.Equal(models.ProjectInProgress, projects[0].Status)
	s.Equal(ptr("2026-03-01"), projects[0].StartDate)
	s.Nil(projects[0].EndDate)
	s.Equal(first, projects[1].ID)
	s.Equal(models.ProjectNotStarted, projects[1].Status)

	_, err = s.projects.Insert(s.ctx, models.Project{Name: "bad", Status: "cancelled"})
	s.ErrorIs(err, models.ErrValidation)
}

func (s *ProjectRepoSuite) TestUpdate() {
	id := s.newProject("Garden")

	_, err := s.projects.Update(s.ctx, id, models.ProjectPatch{})
	s.ErrorIs(err, models.ErrNoFieldsToUpdate)

	status := models.ProjectOnHold
	_, err = s.projects.Update(s.ctx, id, models.ProjectPatch{Status: &status, EndDate: models.Set("2026-12-31")})
	s.Require().NoError(err)

	got, err := s.projects.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Garden", got.Name)
	s.Equal(models.ProjectOnHold, got.Status)
	s.Equal(ptr("2026-12-31"), got.EndDate)
}

func (s *ProjectRepoSuite) TestDeleteNullifiesTasks() {
	project := s.newProject("Garden")
	task := s.newTask("plant")
	_, err := s.tasks.UpdateProject(s.ctx, task, &project)
	s.Require().NoError(err)

	n, err := s.projects.Delete(s.ctx, project)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Nil(s.task(task).ProjectID)

	_, err = s.projects.GetByID(s.ctx, project)
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *ProjectRepoSuite) TestDeleteRollsBack() {
	project := s.newProject("Garden")
	task := s.newTask("plant")
	_, err := s.tasks.UpdateProject(s.ctx, task, &project)
	s.Require().NoError(err)
	s.exec(`CREATE TRIGGER fail_delete BEFORE DELETE ON projects
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)

	_, err = s.projects.Delete(s.ctx, project)
	s.Require().Error(err)
	s.Equal(&project, s.task(task).ProjectID)
}

func (s *ProjectRepoSuite) TestProgress() {
	project := s.newProject("Garden")

	pct, err := s.projects.Progress(s.ctx, project)
	s.Require().NoError(err)
	s.Zero(pct)

	done := s.newTask("dig", withStatus(models.StatusCompleted))
	half := s.newTask("plant")
	_, err = s.tasks.UpdateCompletion(s.ctx, half, 50)
	s.Require().NoError(err)
	for _, id := range []int64{done, half} {
		_, err := s.tasks.UpdateProject(s.ctx, id, &project)
		s.Require().NoError(err)
	}

	pct, err = s.projects.Progress(s.ctx, project)
	s.Require().NoError(err)
	s.Equal(75, pct)
}
