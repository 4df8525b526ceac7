package contract

import (
	"context"

	"chat-assistant-be/internal/entity"
	"chat-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateHistory(ctx context.Context, id uuid.UUID, history, lastQuestion string) error
}
