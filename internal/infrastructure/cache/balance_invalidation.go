package cache

import (
	"context"

	appaccounting "github.com/elimu/backend/internal/application/accounting"
	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BalanceInvalidationHandler drops cached balances for every account a
// posted journal entry touched. Subscribed to the in-process event bus so
// posting and cache invalidation stay decoupled.
type BalanceInvalidationHandler struct {
	cache  appaccounting.BalanceCache
	logger *zap.Logger
}

// NewBalanceInvalidationHandler creates a new BalanceInvalidationHandler
func NewBalanceInvalidationHandler(cache appaccounting.BalanceCache, log *zap.Logger) *BalanceInvalidationHandler {
	return &BalanceInvalidationHandler{cache: cache, logger: log}
}

// EventTypes returns the event types this handler is interested in
func (h *BalanceInvalidationHandler) EventTypes() []string {
	return []string{"JournalPosted"}
}

// Handle invalidates cached balances for the posted entry's accounts
func (h *BalanceInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	posted, ok := event.(*accounting.JournalPostedEvent)
	if !ok {
		return nil
	}

	h.cache.Invalidate(ctx, posted.SchoolID(), posted.AccountIDs...)
	if h.logger != nil {
		h.logger.Debug("invalidated account balances",
			zap.String("school_id", posted.SchoolID().String()),
			zap.String("entry_number", posted.EntryNumber),
			zap.Int("accounts", len(posted.AccountIDs)))
	}
	return nil
}

// Ensure interface compliance
var _ shared.EventHandler = (*BalanceInvalidationHandler)(nil)
