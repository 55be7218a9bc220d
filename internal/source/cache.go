package source

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"prgrip/internal/domain"
	"prgrip/internal/log"
)

// CachedSource memoizes List and Diff results of another Source for a TTL
type CachedSource struct {
	next  Source
	cache *gocache.Cache
}

// NewCachedSource wraps next. A ttl of zero or less disables caching.
func NewCachedSource(next Source, ttl time.Duration) Source {
	if ttl <= 0 {
		return next
	}
	return &CachedSource{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func listKey(q domain.Query) string {
	return fmt.Sprintf("list|%s|%s|%d|%s", q.Repo, q.State, q.Limit, q.Search)
}

func diffKey(repo string, number int) string {
	return fmt.Sprintf("diff|%s|%d", repo, number)
}

func (c *CachedSource) List(ctx context.Context, q domain.Query) ([]domain.PullRequest, error) {
	key := listKey(q)
	if v, ok := c.cache.Get(key); ok {
		if prs, ok := v.([]domain.PullRequest); ok {
			log.Debug(log.CatSource, "cache hit", "key", key)
			return prs, nil
		}
	}

	prs, err := c.next.List(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, prs, gocache.DefaultExpiration)
	return prs, nil
}

func (c *CachedSource) Diff(ctx context.Context, repo string, number int) (string, error) {
	key := diffKey(repo, number)
	if v, ok := c.cache.Get(key); ok {
		if diff, ok := v.(string); ok {
			return diff, nil
		}
	}

	diff, err := c.next.Diff(ctx, repo, number)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, diff, gocache.DefaultExpiration)
	return diff, nil
}

// Invalidate drops every cached result
func (c *CachedSource) Invalidate() {
	c.cache.Flush()
}
