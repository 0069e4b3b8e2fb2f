// Package ratelimit はクライアントごとのリクエスト数を固定ウィンドウで制限します。
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter は現在のウィンドウで key のリクエストをさらに許可するかを返します。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter は Redis の INCR/EXPIRE NX による固定ウィンドウのリミッターです。
// EXPIRE NX のため Redis 7 以降が必要です。
// 複数インスタンス間でカウントを共有します。
type RedisLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter は window あたり limit 回まで許可するリミッターを生成します。
func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: "ratelimit:"}
}

// Allow は INCR と EXPIRE NX を同一トランザクションで送信します。
// 有効期限は毎回 NX で再設定を試みるため、一度 EXPIRE に失敗しても次のリクエストで回復します。
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", k, err)
	}
	return incr.Val() <= int64(l.limit), nil
}

type window struct {
	count     int
	lastReset time.Time
}

// MemoryLimiter はプロセス内でカウントする固定ウィンドウのリミッターです。
// Redis が設定されていない場合に使用します。
type MemoryLimiter struct {
	mu       sync.Mutex
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	windows  map[string]*window
	now      func() time.Time
}

// NewMemoryLimiter は新しい MemoryLimiter を生成します。
func NewMemoryLimiter(limit int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= l.interval {
		w = &window{lastReset: now}
		l.windows[key] = w
		l.evict(now)
	}

	w.count++
	return w.count <= l.limit, nil
}

// evict は期限切れのウィンドウを破棄します。
func (l *MemoryLimiter) evict(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.lastReset) >= l.interval {
			delete(l.windows, k)
		}
	}
}
