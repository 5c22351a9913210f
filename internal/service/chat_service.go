package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"anoa.com/classcollab/internal/dto"
	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/internal/repository"
	"anoa.com/classcollab/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultFetchLimit = 50

// ChatService persists chat messages and fans them out over Redis pub/sub so
// websocket subscribers see them live. Delivery is fire and forget: the
// database row is the durable record, the publish is best effort.
type ChatService interface {
	SendToGroup(ctx context.Context, senderID, groupID uuid.UUID, body string) (*dto.MessageResponse, error)
	SendToClass(ctx context.Context, senderID, classID uuid.UUID, body string) (*dto.MessageResponse, error)
	SendPrivate(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*dto.MessageResponse, error)

	FetchGroup(ctx context.Context, callerID, groupID uuid.UUID, limit int) ([]dto.MessageResponse, error)
	FetchClass(ctx context.Context, callerID, classID uuid.UUID, limit int) ([]dto.MessageResponse, error)
	FetchPrivate(ctx context.Context, callerID, otherID uuid.UUID, limit int) ([]dto.MessageResponse, error)

	RecentChats(ctx context.Context, userID uuid.UUID) ([]dto.RecentChatEntry, error)

	// CanAccessRoom reports whether the user may read the given chat room.
	// The websocket handler uses it before subscribing.
	CanAccessRoom(ctx context.Context, userID uuid.UUID, roomType string, roomID uuid.UUID) (bool, error)
}

const (
	RoomGroup   = "group"
	RoomClass   = "class"
	RoomPrivate = "private"
)

type chatService struct {
	messageRepo repository.MessageRepository
	groupRepo   repository.GroupRepository
	classRepo   repository.ClassRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
	rateLimit   time.Duration
}

func NewChatService(messageRepo repository.MessageRepository, groupRepo repository.GroupRepository, classRepo repository.ClassRepository, userRepo repository.UserRepository, redisClient *redis.Client, rateLimit time.Duration) ChatService {
	if rateLimit <= 0 {
		rateLimit = time.Second
	}
	return &chatService{
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
		classRepo:   classRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
		rateLimit:   rateLimit,
	}
}

// GroupChannel is the Redis pub/sub channel carrying a group's messages.
func GroupChannel(groupID uuid.UUID) string {
	return fmt.Sprintf("chat:group:%s", groupID.String())
}

func ClassChannel(classID uuid.UUID) string {
	return fmt.Sprintf("chat:class:%s", classID.String())
}

// UserChannel carries a user's incoming private messages.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("chat:user:%s", userID.String())
}

func (s *chatService) SendToGroup(ctx context.Context, senderID, groupID uuid.UUID, body string) (*dto.MessageResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !group.HasMember(senderID) {
		return nil, fmt.Errorf("only group members can chat in this group: %w", apperror.ErrForbidden)
	}

	return s.send(ctx, senderID, body, func(m *model.Message) {
		m.GroupID = &groupID
	}, GroupChannel(groupID))
}

// SendToClass is broadcast only: the class teacher writes, students read.
func (s *chatService) SendToClass(ctx context.Context, senderID, classID uuid.UUID, body string) (*dto.MessageResponse, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("class not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if class.TeacherID != senderID {
		return nil, fmt.Errorf("only the class teacher can post to the class chat: %w", apperror.ErrForbidden)
	}

	return s.send(ctx, senderID, body, func(m *model.Message) {
		m.ClassID = &classID
	}, ClassChannel(classID))
}

func (s *chatService) SendPrivate(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*dto.MessageResponse, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("cannot send a private message to yourself: %w", apperror.ErrValidation)
	}
	if _, err := s.userRepo.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipient not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Both participants' channels get the message so the sender's other
	// sessions stay in sync too.
	return s.send(ctx, senderID, body, func(m *model.Message) {
		m.RecipientID = &recipientID
	}, UserChannel(recipientID), UserChannel(senderID))
}

func (s *chatService) send(ctx context.Context, senderID uuid.UUID, body string, target func(*model.Message), channels ...string) (*dto.MessageResponse, error) {
	sender, err := s.userRepo.FindByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sender not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, senderID, "chat", s.rateLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("you are sending messages too quickly: %w", apperror.ErrRateLimitExceeded)
	}

	message := &model.Message{
		SenderID: senderID,
		Body:     body,
	}
	target(message)

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	message.Sender = *sender

	resp := dto.NewMessageResponse(message)
	s.publish(ctx, resp, channels...)
	return &resp, nil
}

func (s *chatService) publish(ctx context.Context, resp dto.MessageResponse, channels ...string) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	for _, channel := range channels {
		s.redisClient.Publish(ctx, channel, payload)
	}
}

func (s *chatService) FetchGroup(ctx context.Context, callerID, groupID uuid.UUID, limit int) ([]dto.MessageResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, fmt.Errorf("only group members can read this chat: %w", apperror.ErrForbidden)
	}

	messages, err := s.messageRepo.ListByGroup(ctx, groupID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return toChronological(messages), nil
}

func (s *chatService) FetchClass(ctx context.Context, callerID, classID uuid.UUID, limit int) ([]dto.MessageResponse, error) {
	if err := s.requireClassAccess(ctx, callerID, classID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByClass(ctx, classID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return toChronological(messages), nil
}

func (s *chatService) FetchPrivate(ctx context.Context, callerID, otherID uuid.UUID, limit int) ([]dto.MessageResponse, error) {
	messages, err := s.messageRepo.ListPrivate(ctx, callerID, otherID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return toChronological(messages), nil
}

// RecentChats lists the caller's private conversations, most recently active
// first.
func (s *chatService) RecentChats(ctx context.Context, userID uuid.UUID) ([]dto.RecentChatEntry, error) {
	partnerIDs, err := s.messageRepo.ListPrivatePartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	partners, err := s.userRepo.FindByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.RecentChatEntry, 0, len(partners))
	for _, partner := range partners {
		last, err := s.messageRepo.LastPrivate(ctx, userID, partner.ID)
		if err != nil {
			return nil, err
		}
		entry := dto.RecentChatEntry{User: dto.NewUserSummary(partner)}
		if last != nil {
			resp := dto.NewMessageResponse(last)
			entry.LastMessage = &resp
			entry.LastMessageTime = last.CreatedAt
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastMessageTime.After(entries[j].LastMessageTime)
	})
	return entries, nil
}

func (s *chatService) CanAccessRoom(ctx context.Context, userID uuid.UUID, roomType string, roomID uuid.UUID) (bool, error) {
	switch roomType {
	case RoomGroup:
		group, err := s.groupRepo.FindByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return group.HasMember(userID), nil
	case RoomClass:
		err := s.requireClassAccess(ctx, userID, roomID)
		if err != nil {
			if errors.Is(err, apperror.ErrForbidden) || errors.Is(err, apperror.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	case RoomPrivate:
		// A user's private channel is their own.
		return userID == roomID, nil
	default:
		return false, nil
	}
}

func (s *chatService) requireClassAccess(ctx context.Context, userID, classID uuid.UUID) error {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("class not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if class.TeacherID == userID {
		return nil
	}

	enrolled, err := s.classRepo.IsStudent(ctx, classID, userID)
	if err != nil {
		return err
	}
	if !enrolled {
		return fmt.Errorf("only enrolled students and the teacher can use this class chat: %w", apperror.ErrForbidden)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultFetchLimit
	}
	if limit > 200 {
		return 200
	}
	return limit
}

// toChronological flips a newest-first page into ascending order for
// presentation.
func toChronological(messages []*model.Message) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		responses = append(responses, dto.NewMessageResponse(messages[i]))
	}
	return responses
}
