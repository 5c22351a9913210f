package repository

import (
	"context"
	"errors"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	// List* return the `limit` most recent messages, newest first. Callers
	// reverse for chronological presentation so truncation always drops the
	// oldest messages, never the newest.
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*model.Message, error)
	ListByClass(ctx context.Context, classID uuid.UUID, limit int) ([]*model.Message, error)
	ListPrivate(ctx context.Context, userA, userB uuid.UUID, limit int) ([]*model.Message, error)
	LastPrivate(ctx context.Context, userA, userB uuid.UUID) (*model.Message, error)
	ListPrivatePartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("group_id = ?", groupID).
		Order("created_at DESC").Order("seq DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListByClass(ctx context.Context, classID uuid.UUID, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("class_id = ?", classID).
		Order("created_at DESC").Order("seq DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListPrivate(ctx context.Context, userA, userB uuid.UUID, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").Order("seq DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListPrivatePartners returns the distinct users the given user has exchanged
// private messages with, in no particular order.
func (r *messageRepository) ListPrivatePartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var partners []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select("DISTINCT CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END", userID).
		Where("recipient_id IS NOT NULL").
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Scan(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *messageRepository) LastPrivate(ctx context.Context, userA, userB uuid.UUID) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").Order("seq DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
