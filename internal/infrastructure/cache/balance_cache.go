package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	appaccounting "github.com/elimu/backend/internal/application/accounting"
	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const balanceKeyPrefix = "balance:"

// RedisBalanceCache caches computed account balances in Redis. Balances are
// derived from posted journal lines, so entries are safe to cache until the
// next posting touches the account; a TTL bounds staleness if an
// invalidation is lost.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisBalanceCache creates a Redis-backed balance cache
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisBalanceCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisBalanceCache{client: client, ttl: ttl, logger: log}
}

func balanceKey(schoolID, accountID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", balanceKeyPrefix, schoolID, accountID)
}

// Get returns the cached balance for an account, if present
func (c *RedisBalanceCache) Get(ctx context.Context, schoolID, accountID uuid.UUID) (*accounting.AccountBalance, bool) {
	data, err := c.client.Get(ctx, balanceKey(schoolID, accountID)).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("balance cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var balance accounting.AccountBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, false
	}
	return &balance, true
}

// Set stores a computed balance. Failures are logged, never surfaced: the
// cache is an optimization, reads fall through to the ledger.
func (c *RedisBalanceCache) Set(ctx context.Context, schoolID uuid.UUID, balance accounting.AccountBalance) {
	data, err := json.Marshal(balance)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, balanceKey(schoolID, balance.AccountID), data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("balance cache write failed", zap.Error(err))
	}
}

// Invalidate drops cached balances for the given accounts
func (c *RedisBalanceCache) Invalidate(ctx context.Context, schoolID uuid.UUID, accountIDs ...uuid.UUID) {
	if len(accountIDs) == 0 {
		return
	}
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = balanceKey(schoolID, id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil && c.logger != nil {
		c.logger.Warn("balance cache invalidation failed", zap.Error(err))
	}
}

// InMemoryBalanceCache is a process-local balance cache for development and
// single-instance deployments
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[string]accounting.AccountBalance
}

// NewInMemoryBalanceCache creates an in-memory balance cache
func NewInMemoryBalanceCache() *InMemoryBalanceCache {
	return &InMemoryBalanceCache{entries: make(map[string]accounting.AccountBalance)}
}

// Get returns the cached balance for an account, if present
func (c *InMemoryBalanceCache) Get(_ context.Context, schoolID, accountID uuid.UUID) (*accounting.AccountBalance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	balance, ok := c.entries[balanceKey(schoolID, accountID)]
	if !ok {
		return nil, false
	}
	return &balance, true
}

// Set stores a computed balance
func (c *InMemoryBalanceCache) Set(_ context.Context, schoolID uuid.UUID, balance accounting.AccountBalance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[balanceKey(schoolID, balance.AccountID)] = balance
}

// Invalidate drops cached balances for the given accounts
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, schoolID uuid.UUID, accountIDs ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range accountIDs {
		delete(c.entries, balanceKey(schoolID, id))
	}
}

// Ensure interface compliance
var (
	_ appaccounting.BalanceCache = (*RedisBalanceCache)(nil)
	_ appaccounting.BalanceCache = (*InMemoryBalanceCache)(nil)
)
