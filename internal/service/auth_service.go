package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/classcollab/internal/dto"
	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/internal/repository"
	"anoa.com/classcollab/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserSummary, error)
	LookupBySRNs(ctx context.Context, srns []string) ([]dto.UserSummary, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]dto.UserSummary, error)
}

type authService struct {
	userRepo repository.UserRepository
	search   UserSearchService
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, search UserSearchService, secret string, tokenTTL time.Duration) AuthService {
	if secret == "" {
		secret = "change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &authService{
		userRepo: userRepo,
		search:   search,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("an account with this email already exists: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The SRN carries a unique index too; checked here so a duplicate surfaces
	// as Conflict instead of a raw constraint violation.
	if req.SRN != nil && *req.SRN != "" {
		existing, err := s.userRepo.FindBySRNs(ctx, []string{*req.SRN})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("an account with this registration number already exists: %w", apperror.ErrConflict)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		SRN:          req.SRN,
		IsTeacher:    req.IsTeacher,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexUser(user)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserSummary, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	summary := dto.NewUserSummary(user)
	return &summary, nil
}

// LookupBySRNs resolves registration numbers to users, for roster-based
// member adds. Unknown SRNs are skipped rather than failing the batch.
func (s *authService) LookupBySRNs(ctx context.Context, srns []string) ([]dto.UserSummary, error) {
	users, err := s.userRepo.FindBySRNs(ctx, srns)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, dto.NewUserSummary(user))
	}
	return summaries, nil
}

func (s *authService) SearchUsers(ctx context.Context, query string, limit int) ([]dto.UserSummary, error) {
	docs, err := s.search.SearchUsers(query, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.UserSummary, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		summary := dto.UserSummary{
			ID:        id,
			Name:      doc.Name,
			Email:     doc.Email,
			IsTeacher: doc.IsTeacher,
		}
		if doc.SRN != "" {
			srn := doc.SRN
			summary.SRN = &srn
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: signed,
		User:  dto.NewUserSummary(user),
	}, nil
}
