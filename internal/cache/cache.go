package cache

import (
	"context"
	"time"
)

// Cache fronts slow campaign lookups. Misses are never errors.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CampaignKey is the cache key for a campaign's full record, questions
// included.
func CampaignKey(campaignID string) string { return "campaign:" + campaignID }
