package overpass

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/sync/singleflight"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/infrastructure/cache"
	"QualityRadar-App/internal/infrastructure/metrics"
)

const (
	DefaultBaseURL = "https://overpass-api.de/api/interpreter"

	// QueryTTL はOverpassクエリ結果のキャッシュ期間
	QueryTTL = 10 * time.Minute
)

// Config Overpassクライアントの設定
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	QueryTTL time.Duration
}

// Client はOverpass APIとの通信を担当するクライアント
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.TTLCache
	metrics    *metrics.Metrics
	queryTTL   time.Duration
	group      singleflight.Group
}

// NewClient は新しいClientインスタンスを作成
func NewClient(cfg Config, responseCache *cache.TTLCache, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.QueryTTL <= 0 {
		cfg.QueryTTL = QueryTTL
	}
	if responseCache == nil {
		responseCache = cache.NewTTLCache()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:    responseCache,
		metrics:  m,
		queryTTL: cfg.QueryTTL,
	}
}

// QueryKey はクエリ文字列のキャッシュキー
func QueryKey(query string) string {
	return "overpass:" + base64.StdEncoding.EncodeToString([]byte(query))
}

// BuildBoundsQuery は範囲内のnode/way/relationを取得するOverpass QLを組み立てる
// タグフィルタはキー順に並べるので同じ条件なら同じクエリ文字列になる
func BuildBoundsQuery(bound orb.Bound, tags map[string]string) string {
	filter := tagFilter(tags)
	bbox := fmt.Sprintf("(%s,%s,%s,%s)",
		formatCoord(bound.Min.Lat()), formatCoord(bound.Min.Lon()),
		formatCoord(bound.Max.Lat()), formatCoord(bound.Max.Lon()))

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s%s%s;\n", kind, filter, bbox)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;")
	return b.String()
}

// QueryFeatures は範囲とタグ条件でOSM要素を取得する
func (c *Client) QueryFeatures(ctx context.Context, bounds model.Bounds, tags map[string]string) ([]model.OSMEntity, error) {
	return c.ExecuteQuery(ctx, BuildBoundsQuery(bounds.ToBound(), tags))
}

// ExecuteQuery は任意のOverpass QLを実行する
func (c *Client) ExecuteQuery(ctx context.Context, query string) ([]model.OSMEntity, error) {
	key := QueryKey(query)
	if cached, ok := cache.GetAs[[]model.OSMEntity](c.cache, key); ok {
		return cached, nil
	}

	// 共有リクエストは最初の呼び出し元の切断で止めない（httpClientのタイムアウトで打ち切る）
	ch := c.group.DoChan(key, func() (any, error) {
		entities, err := c.execute(context.WithoutCancel(ctx), query)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, entities, c.queryTTL)
		return entities, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.OSMEntity), nil
	}
}

func (c *Client) execute(ctx context.Context, query string) (entities []model.OSMEntity, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("overpass", start, err) }()

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Overpass APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Overpass API呼び出しエラー (status: %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("レスポンスのパースに失敗: %w", err)
	}

	entities = make([]model.OSMEntity, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		entities = append(entities, el.toModel())
	}
	return entities, nil
}

// overpassResponse はOverpass APIのレスポンス構造体
type overpassResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type      string            `json:"type"`
	ID        int64             `json:"id"`
	Lat       *float64          `json:"lat,omitempty"`
	Lon       *float64          `json:"lon,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Version   int               `json:"version,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

func (e element) toModel() model.OSMEntity {
	entity := model.OSMEntity{
		ID:      elementID(e.Type, e.ID),
		Type:    model.OSMElementType(e.Type),
		Tags:    e.Tags,
		Version: e.Version,
	}
	if entity.Tags == nil {
		entity.Tags = map[string]string{}
	}
	if e.Lat != nil && e.Lon != nil {
		entity.Coordinates = &model.LatLng{Lat: *e.Lat, Lng: *e.Lon}
	}
	if e.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			entity.Timestamp = &ts
		}
	}
	return entity
}

// elementID は "n123" のように種別の頭文字とIDを連結する
func elementID(kind string, id int64) string {
	prefix := ""
	if kind != "" {
		prefix = kind[:1]
	}
	return prefix + strconv.FormatInt(id, 10)
}

func tagFilter(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, `["%s"="%s"]`, escapeQL(k), escapeQL(tags[k]))
	}
	return b.String()
}

func escapeQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
