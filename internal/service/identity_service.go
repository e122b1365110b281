package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

// IdentityService владеет пользователями.
type IdentityService struct {
	userRepo repository.UserRepository
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewIdentityService(userRepo repository.UserRepository, log logger.Logger, m *metrics.Metrics) *IdentityService {
	return &IdentityService{userRepo: userRepo, log: log, metrics: m}
}

type CreateUserInput struct {
	Email          string
	TelegramChatID *int64
	// nil: уведомления включены.
	NotificationEnabled *bool
}

// CreateUser регистрирует пользователя. Email уникален без учёта регистра.
func (s *IdentityService) CreateUser(ctx context.Context, in CreateUserInput) (_ *model.User, err error) {
	const op = "create user"
	defer func(start time.Time) { s.metrics.ObserveOperation("create_user", start, err) }(time.Now())

	email, ok := normalizeEmail(in.Email)
	if !ok {
		return nil, invalidArgument(op, "malformed email %q", in.Email)
	}

	// Отрицательные id у групповых чатов Telegram допустимы, нулевой недопустим.
	if in.TelegramChatID != nil && *in.TelegramChatID == 0 {
		return nil, invalidArgument(op, "telegram chat id must not be zero")
	}

	enabled := true
	if in.NotificationEnabled != nil {
		enabled = *in.NotificationEnabled
	}

	u := &model.User{
		Email:               email,
		TelegramChatID:      in.TelegramChatID,
		NotificationEnabled: enabled,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		s.log.Warn("create user failed", "email", email, "error", err)
		return nil, storeError(op, err)
	}

	s.log.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *IdentityService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return u, nil
}
