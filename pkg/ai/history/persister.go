package history

import (
	"context"
	"fmt"

	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/repository/specification"
	"chat-assistant-be/internal/repository/unitofwork"
)

// FormatTurn renders one exchange the way it is stored in the transcript blob.
func FormatTurn(userText, botText string) string {
	return fmt.Sprintf("User: %s | Bot: %s\n", userText, botText)
}

// Persister appends finished turns to the stored user record.
type Persister struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewPersister(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Persister {
	return &Persister{uowFactory: uowFactory, logger: log}
}

// Merge appends the exchange to the stored transcript and records userText as
// the last question. The row stays locked from read to write. An identity with
// no stored record is skipped without error.
func (p *Persister) Merge(ctx context.Context, identity, userText, botText string) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin history merge: %w", err)
	}
	defer uow.Rollback()

	repo := uow.UserRepository()
	user, err := repo.FindOne(ctx, specification.ByEmail{Email: identity}, specification.ForUpdate{})
	if err != nil {
		return fmt.Errorf("load user record: %w", err)
	}
	if user == nil {
		p.logger.Debug("HISTORY", "No stored record for identity, skipping merge", map[string]interface{}{
			"identity": identity,
		})
		return nil
	}

	blob := user.History + FormatTurn(userText, botText)
	if err := repo.UpdateHistory(ctx, user.Id, blob, userText); err != nil {
		return fmt.Errorf("update history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit history merge: %w", err)
	}
	return nil
}
