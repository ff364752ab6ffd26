package cache

import (
	"sync"
	"time"
)

// DefaultTTL はTTL未指定時の有効期間
const DefaultTTL = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Observer はGetのたびにキーとヒット有無を通知されるフック
type Observer func(key string, hit bool)

// TTLCache 外部APIレスポンス用のインメモリTTLキャッシュ
//
// エントリは now < expiresAt の間だけ読み出せる。期限切れのエントリは
// 次のGetで削除され、未登録と区別されない。バックグラウンドでの掃除は行わない。
type TTLCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	now      func() time.Time
	observer Observer
}

// Option はTTLCacheの設定関数
type Option func(*TTLCache)

// WithClock は現在時刻の取得関数を差し替える（テスト用）
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		c.now = now
	}
}

// WithObserver はヒット/ミスの通知先を設定する
func WithObserver(observer Observer) Option {
	return func(c *TTLCache) {
		c.observer = observer
	}
}

// NewTTLCache は新しいTTLCacheを作成
func NewTTLCache(opts ...Option) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get は有効なエントリの値を返す
func (c *TTLCache) Get(key string) (any, bool) {
	value, ok := c.lookup(key)
	if c.observer != nil {
		c.observer(key, ok)
	}
	return value, ok
}

func (c *TTLCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set はttl後に失効するエントリを保存する。同じキーの既存エントリは上書きされる
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// SetDefault はDefaultTTLでエントリを保存する
func (c *TTLCache) SetDefault(key string, value any) {
	c.Set(key, value, DefaultTTL)
}

// Delete はエントリを削除する（存在しなければ何もしない）
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear は全エントリを削除する
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len は保持しているエントリ数（期限切れで未回収のものを含む）
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetAs は型付きでエントリを取得する。型が一致しない場合はミス扱い
func GetAs[T any](c *TTLCache, key string) (T, bool) {
	var zero T
	value, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
