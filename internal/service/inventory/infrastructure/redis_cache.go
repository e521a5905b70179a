// internal/service/inventory/infrastructure/redis_cache.go
package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"webshop/internal/pkg/logger"
	pkgredis "webshop/internal/pkg/redis"
	"webshop/internal/service/inventory/domain"
)

// 未知 SKU 的短暂负缓存标记，避免每次都穿透到数据库。
const absentMarker = -1

// CachedStockRepository 在 GORM 仓储前加一层 Redis cache-aside。
// TTL 很短：库存可用性本来就只是时点快照，缓存只为压掉热点 SKU 的重复查询。
// 同一批未命中 SKU 的并发回源由 singleflight 合并成一次数据库查询。
type CachedStockRepository struct {
	inner domain.StockRepository
	redis *pkgredis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedStockRepository(inner domain.StockRepository, redisClient *pkgredis.Client, ttl time.Duration) *CachedStockRepository {
	return &CachedStockRepository{inner: inner, redis: redisClient, ttl: ttl}
}

func stockKey(skuCode string) string {
	return fmt.Sprintf("inventory:qty:%s", skuCode)
}

func (c *CachedStockRepository) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]domain.StockItem, error) {
	if len(skuCodes) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(skuCodes))
	for _, sku := range skuCodes {
		keys = append(keys, stockKey(sku))
	}

	vals, err := c.redis.GetClient().MGet(ctx, keys...).Result()
	if err != nil {
		// 缓存故障不致命，降级直查数据库
		logger.Ctx(ctx).Warn().Err(err).Msg("redis mget failed, falling back to database")
		return c.inner.FindBySkuCodes(ctx, skuCodes)
	}

	items := make([]domain.StockItem, 0, len(skuCodes))
	var misses []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, skuCodes[i])
			continue
		}
		qty, err := strconv.Atoi(s)
		if err != nil {
			misses = append(misses, skuCodes[i])
			continue
		}
		if qty == absentMarker {
			continue
		}
		items = append(items, domain.StockItem{SkuCode: skuCodes[i], Quantity: qty})
	}

	if len(misses) == 0 {
		return items, nil
	}

	loaded, err := c.loadAndCache(ctx, misses)
	if err != nil {
		return nil, err
	}
	return append(items, loaded...), nil
}

// loadAndCache 回源数据库并回填缓存，按未命中 SKU 集合做 singleflight 合并。
func (c *CachedStockRepository) loadAndCache(ctx context.Context, misses []string) ([]domain.StockItem, error) {
	v, err, _ := c.group.Do(strings.Join(misses, ","), func() (interface{}, error) {
		loaded, err := c.inner.FindBySkuCodes(ctx, misses)
		if err != nil {
			return nil, err
		}

		found := make(map[string]int, len(loaded))
		for _, item := range loaded {
			found[item.SkuCode] = item.Quantity
		}

		pipe := c.redis.GetClient().Pipeline()
		for _, sku := range misses {
			qty, ok := found[sku]
			if !ok {
				qty = absentMarker
			}
			pipe.Set(ctx, stockKey(sku), strconv.Itoa(qty), c.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to backfill stock cache")
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.StockItem), nil
}

// Upsert 直写数据库并让对应缓存键失效。
func (c *CachedStockRepository) Upsert(ctx context.Context, item domain.StockItem) error {
	if err := c.inner.Upsert(ctx, item); err != nil {
		return err
	}
	if err := c.redis.GetClient().Del(ctx, stockKey(item.SkuCode)).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sku", item.SkuCode).Msg("failed to invalidate stock cache")
	}
	return nil
}
