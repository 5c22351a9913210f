package service

import (
	"context"
	"sort"

	"anoa.com/classcollab/internal/dto"
	"anoa.com/classcollab/internal/repository"
	"github.com/google/uuid"
)

// DeadlineService merges class projects and group assignments into one
// per-student feed. It is read only and derives everything from the stores;
// nothing is cached, so the feed always reflects current membership.
type DeadlineService interface {
	StudentDeadlines(ctx context.Context, userID uuid.UUID) ([]dto.DeadlineItem, error)
}

type deadlineService struct {
	classRepo      repository.ClassRepository
	groupRepo      repository.GroupRepository
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
}

func NewDeadlineService(classRepo repository.ClassRepository, groupRepo repository.GroupRepository, projectRepo repository.ProjectRepository, assignmentRepo repository.AssignmentRepository) DeadlineService {
	return &deadlineService{
		classRepo:      classRepo,
		groupRepo:      groupRepo,
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
	}
}

// StudentDeadlines returns every upcoming and past deadline the user is
// subject to, ascending by deadline. Projects come from enrolled classes,
// assignments from group membership. The merge is stable, so items sharing a
// deadline keep projects-then-assignments order per source.
func (s *deadlineService) StudentDeadlines(ctx context.Context, userID uuid.UUID) ([]dto.DeadlineItem, error) {
	var items []dto.DeadlineItem

	classes, err := s.classRepo.ListByStudent(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, class := range classes {
		projects, err := s.projectRepo.ListByClassByDeadline(ctx, class.ID)
		if err != nil {
			return nil, err
		}
		for _, project := range projects {
			items = append(items, dto.DeadlineItem{
				ID:          project.ID,
				Title:       project.Title,
				Deadline:    project.Deadline,
				Type:        dto.DeadlineTypeProject,
				Source:      class.Name,
				Description: project.Description,
			})
		}
	}

	groups, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	groupNames := make(map[uuid.UUID]string, len(groups))
	groupIDs := make([]uuid.UUID, 0, len(groups))
	for _, group := range groups {
		groupNames[group.ID] = group.Name
		groupIDs = append(groupIDs, group.ID)
	}

	assignments, err := s.assignmentRepo.ListByGroupsByDeadline(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	for _, assignment := range assignments {
		items = append(items, dto.DeadlineItem{
			ID:          assignment.ID,
			Title:       assignment.Title,
			Deadline:    assignment.Deadline,
			Type:        dto.DeadlineTypeAssignment,
			Source:      groupNames[assignment.GroupID],
			Description: assignment.Description,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Deadline.Before(items[j].Deadline)
	})

	if items == nil {
		items = []dto.DeadlineItem{}
	}
	return items, nil
}
