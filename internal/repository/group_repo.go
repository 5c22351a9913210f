package repository

import (
	"context"
	"time"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group, memberIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Group, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]*model.Group, error)

	AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)

	AddJoinRequest(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	RemoveJoinRequest(ctx context.Context, groupID, userID uuid.UUID) (bool, error)

	CreateInvitation(ctx context.Context, invitation *model.GroupInvitation) error
	FindPendingInvitation(ctx context.Context, groupID, userID uuid.UUID) (*model.GroupInvitation, error)
	ResolveInvitation(ctx context.Context, invitationID uuid.UUID, status string) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Create persists the group and its initial membership in one transaction.
// The caller guarantees memberIDs is deduplicated and contains the leader.
func (r *groupRepository) Create(ctx context.Context, group *model.Group, memberIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		members := make([]model.GroupMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, model.GroupMember{GroupID: group.ID, UserID: id})
		}
		return tx.Create(&members).Error
	})
}

func (r *groupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Leader").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_members.id ASC")
		}).
		Preload("Members.User").
		Preload("JoinRequests", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_join_requests.id ASC")
		}).
		Preload("JoinRequests.User").
		Preload("Invitations", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_invitations.created_at ASC")
		}).
		Preload("Invitations.User").
		First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Group, error) {
	var groups []*model.Group
	if err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Leader").
		Joins("LEFT JOIN group_members gm ON gm.group_id = groups.id AND gm.user_id = ?", userID).
		Where("gm.id IS NOT NULL OR groups.leader_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListByClass(ctx context.Context, classID uuid.UUID) ([]*model.Group, error) {
	var groups []*model.Group
	if err := r.db.WithContext(ctx).
		Preload("Leader").
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// AddMember inserts a membership row, reporting false when the user was
// already a member. Concurrent accepts for the same user collapse into one
// row through the unique constraint instead of producing duplicates.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	member := model.GroupMember{GroupID: groupID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) AddJoinRequest(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	request := model.GroupJoinRequest{GroupID: groupID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&request)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveJoinRequest consumes the pending request. The returned flag is false
// when no request existed, which lets a second concurrent accept observe that
// the request was already processed.
func (r *groupRepository) RemoveJoinRequest(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupJoinRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *groupRepository) CreateInvitation(ctx context.Context, invitation *model.GroupInvitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindPendingInvitation returns the user's single pending invitation for the
// group. The invitation log is append-only and never pruned, so this targeted
// lookup avoids scanning full history.
func (r *groupRepository) FindPendingInvitation(ctx context.Context, groupID, userID uuid.UUID) (*model.GroupInvitation, error) {
	var invitation model.GroupInvitation
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, model.InvitationPending).
		Order("created_at DESC").
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *groupRepository) ResolveInvitation(ctx context.Context, invitationID uuid.UUID, status string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.GroupInvitation{}).
		Where("id = ? AND status = ?", invitationID, model.InvitationPending).
		Updates(map[string]interface{}{"status": status, "responded_at": &now}).Error
}
