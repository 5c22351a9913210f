package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/classcollab/internal/dto"
	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/internal/repository"
	"anoa.com/classcollab/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// GroupService is the sole authority over group membership and its mutation
// state machine. Every mutating operation takes the caller identity
// explicitly; there is no ambient context lookup inside business logic.
type GroupService interface {
	Create(ctx context.Context, leaderID uuid.UUID, req dto.CreateGroupRequest) (*dto.GroupResponse, error)
	Get(ctx context.Context, groupID uuid.UUID) (*dto.GroupResponse, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.GroupResponse, error)
	ListForClass(ctx context.Context, classID uuid.UUID) ([]dto.GroupResponse, error)

	RequestToJoin(ctx context.Context, groupID, userID uuid.UUID) error
	HandleJoinRequest(ctx context.Context, groupID, callerID, requesterID uuid.UUID, action string) error
	InviteMember(ctx context.Context, groupID, callerID, targetID uuid.UUID) error
	HandleInvitation(ctx context.Context, groupID, callerID uuid.UUID, action string) error
	AddMember(ctx context.Context, groupID, callerID, targetID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, callerID, targetID uuid.UUID) error
}

type groupService struct {
	groupRepo repository.GroupRepository
	classRepo repository.ClassRepository
	userRepo  repository.UserRepository
}

func NewGroupService(groupRepo repository.GroupRepository, classRepo repository.ClassRepository, userRepo repository.UserRepository) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		classRepo: classRepo,
		userRepo:  userRepo,
	}
}

func (s *groupService) Create(ctx context.Context, leaderID uuid.UUID, req dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	group := &model.Group{
		Name:     req.Name,
		LeaderID: leaderID,
	}

	if req.ClassID != nil {
		classID, err := uuid.Parse(*req.ClassID)
		if err != nil {
			return nil, fmt.Errorf("invalid class id: %w", apperror.ErrValidation)
		}
		if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("class not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		group.ClassID = &classID
	}

	// The leader is always a member, even if the caller omits it.
	memberIDs := []uuid.UUID{leaderID}
	seen := map[uuid.UUID]bool{leaderID: true}
	for _, idStr := range req.MemberIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid member id %q: %w", idStr, apperror.ErrValidation)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		memberIDs = append(memberIDs, id)
	}

	users, err := s.userRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(memberIDs) {
		return nil, fmt.Errorf("one or more initial members do not exist: %w", apperror.ErrNotFound)
	}

	if err := s.groupRepo.Create(ctx, group, memberIDs); err != nil {
		return nil, err
	}

	return s.Get(ctx, group.ID)
}

func (s *groupService) Get(ctx context.Context, groupID uuid.UUID) (*dto.GroupResponse, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewGroupResponse(group)
	return &resp, nil
}

func (s *groupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.GroupResponse, error) {
	groups, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toGroupResponses(groups), nil
}

func (s *groupService) ListForClass(ctx context.Context, classID uuid.UUID) ([]dto.GroupResponse, error) {
	groups, err := s.groupRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return toGroupResponses(groups), nil
}

func (s *groupService) RequestToJoin(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if group.HasMember(userID) {
		return fmt.Errorf("you are already a member of this group: %w", apperror.ErrConflict)
	}

	added, err := s.groupRepo.AddJoinRequest(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("you have already requested to join this group: %w", apperror.ErrConflict)
	}
	return nil
}

func (s *groupService) HandleJoinRequest(ctx context.Context, groupID, callerID, requesterID uuid.UUID, action string) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.requireManager(ctx, group, callerID); err != nil {
		return err
	}

	// Consuming the request first makes a concurrent second accept observe
	// that it was already processed instead of adding the member twice.
	removed, err := s.groupRepo.RemoveJoinRequest(ctx, groupID, requesterID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no pending join request for this user: %w", apperror.ErrNotFound)
	}

	if action == ActionAccept {
		// Idempotent: the user may already be a member through a
		// concurrently accepted invitation.
		if _, err := s.groupRepo.AddMember(ctx, groupID, requesterID); err != nil {
			return err
		}
	}
	return nil
}

func (s *groupService) InviteMember(ctx context.Context, groupID, callerID, targetID uuid.UUID) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.requireManager(ctx, group, callerID); err != nil {
		return err
	}

	if _, err := s.userRepo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if group.HasMember(targetID) {
		return fmt.Errorf("user is already a member of this group: %w", apperror.ErrConflict)
	}

	// At most one pending invitation per user per group.
	if _, err := s.groupRepo.FindPendingInvitation(ctx, groupID, targetID); err == nil {
		return fmt.Errorf("user already has a pending invitation to this group: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	invitation := &model.GroupInvitation{
		GroupID: groupID,
		UserID:  targetID,
		Status:  model.InvitationPending,
	}
	return s.groupRepo.CreateInvitation(ctx, invitation)
}

// HandleInvitation is the only membership-mutating operation invoked by the
// invitee rather than the leader or teacher: the recipient decides.
func (s *groupService) HandleInvitation(ctx context.Context, groupID, callerID uuid.UUID, action string) error {
	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return err
	}

	invitation, err := s.groupRepo.FindPendingInvitation(ctx, groupID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("you have no pending invitation to this group: %w", apperror.ErrInvalidOperation)
		}
		return err
	}

	status := model.InvitationRejected
	if action == ActionAccept {
		status = model.InvitationAccepted
	}
	if err := s.groupRepo.ResolveInvitation(ctx, invitation.ID, status); err != nil {
		return err
	}

	if action == ActionAccept {
		// Idempotent membership add: a pending join request for the same
		// user may have been accepted in the meantime. The other pending
		// record, if any, stays resolvable on its own.
		if _, err := s.groupRepo.AddMember(ctx, groupID, callerID); err != nil {
			return err
		}
	}
	return nil
}

// AddMember is a direct add bypassing the invitation/request flow, intended
// for trusted bulk-add by roster lookup.
func (s *groupService) AddMember(ctx context.Context, groupID, callerID, targetID uuid.UUID) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.requireManager(ctx, group, callerID); err != nil {
		return err
	}

	if _, err := s.userRepo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	added, err := s.groupRepo.AddMember(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("user is already a member of this group: %w", apperror.ErrConflict)
	}
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, callerID, targetID uuid.UUID) error {
	// Loaded fresh inside the call: the leader check must run against
	// current state, not an earlier snapshot.
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.requireManager(ctx, group, callerID); err != nil {
		return err
	}

	if targetID == group.LeaderID {
		return fmt.Errorf("the group leader cannot be removed: %w", apperror.ErrInvalidOperation)
	}

	removed, err := s.groupRepo.RemoveMember(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user is not a member of this group: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *groupService) loadGroup(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return group, nil
}

// requireManager is the single capability check behind every leader/teacher
// gated mutation: the group leader, or the teacher of the group's associated
// class (if any), may manage the group.
func (s *groupService) requireManager(ctx context.Context, group *model.Group, userID uuid.UUID) error {
	if group.LeaderID == userID {
		return nil
	}
	if group.ClassID != nil {
		class, err := s.classRepo.FindByID(ctx, *group.ClassID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if class != nil && class.TeacherID == userID {
			return nil
		}
	}
	return fmt.Errorf("only the group leader or the class teacher may do this: %w", apperror.ErrForbidden)
}

func toGroupResponses(groups []*model.Group) []dto.GroupResponse {
	responses := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		responses = append(responses, dto.NewGroupResponse(g))
	}
	return responses
}
