package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-assistant-be/internal/dto"
	"chat-assistant-be/internal/entity"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/pkg/validation"
	"chat-assistant-be/internal/repository/specification"
	"chat-assistant-be/internal/repository/unitofwork"
	"chat-assistant-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ClaimUser carries the account email inside issued tokens.
const ClaimUser = "user"

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// VerifyToken returns the email a valid token was issued to.
	VerifyToken(tokenStr string) (string, error)
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	config         AuthConfig
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, config AuthConfig, eventPublisher events.Publisher, log logger.ILogger) IAuthService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = time.Hour
	}
	return &authService{
		uowFactory:     uowFactory,
		config:         config,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	if err := validation.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(validation.FailedFields(err), ", "))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id.String()})
	s.publish(ctx, events.New(events.TypeUserRegistered, map[string]interface{}{
		"user_id": user.Id.String(),
		"email":   user.Email,
	}))
	return nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		ClaimUser: user.Email,
		"exp":     s.now().Add(s.config.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.publish(ctx, events.New(events.TypeUserLogin, map[string]interface{}{
		"user_id": user.Id.String(),
		"time":    s.now().Format(time.RFC3339),
	}))

	return &dto.LoginResponse{
		Token: signedToken,
		User:  dto.UserDTO{Email: user.Email},
	}, nil
}

func (s *authService) VerifyToken(tokenStr string) (string, error) {
	return ParseToken(tokenStr, s.config.Secret)
}

// ParseToken validates an HS256 token and returns its user claim.
func ParseToken(tokenStr, secret string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	email, _ := claims[ClaimUser].(string)
	return email, nil
}

func (s *authService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("AUTH", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
