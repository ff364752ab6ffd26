package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/infrastructure/cache"
	"QualityRadar-App/internal/infrastructure/metrics"
)

const (
	DefaultBaseURL = "https://www.wikidata.org/w/api.php"

	// EntityTTL はエンティティ取得結果のキャッシュ期間
	EntityTTL = 10 * time.Minute
	// SearchTTL は検索結果のキャッシュ期間
	SearchTTL = 5 * time.Minute

	searchLanguage = "fr"
	coordinateProp = "P625"
)

// ラベル・説明文の優先言語
var preferredLanguages = []string{"fr", "en"}

// Config Wikidataクライアントの設定
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	EntityTTL time.Duration
	SearchTTL time.Duration
}

// Client はWikidata APIを使用したエンティティ取得の実装
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.TTLCache
	metrics    *metrics.Metrics
	entityTTL  time.Duration
	searchTTL  time.Duration
	group      singleflight.Group
}

// NewClient は新しいクライアントを生成する
func NewClient(cfg Config, responseCache *cache.TTLCache, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.EntityTTL <= 0 {
		cfg.EntityTTL = EntityTTL
	}
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = SearchTTL
	}
	if responseCache == nil {
		responseCache = cache.NewTTLCache()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      responseCache,
		metrics:    m,
		entityTTL:  cfg.EntityTTL,
		searchTTL:  cfg.SearchTTL,
	}
}

// EntityKey はエンティティ取得のキャッシュキー
func EntityKey(id string) string {
	return "wikidata:" + id
}

// SearchKey は検索のキャッシュキー
func SearchKey(query string, limit int) string {
	return "wikidata:search:" + query + ":" + strconv.Itoa(limit)
}

// FetchEntity はIDでエンティティを取得する。存在しない場合は nil, nil を返す
func (c *Client) FetchEntity(ctx context.Context, id string) (*model.WikidataEntity, error) {
	key := EntityKey(id)
	if cached, ok := cache.GetAs[*model.WikidataEntity](c.cache, key); ok {
		return cached, nil
	}

	// 共有リクエストは最初の呼び出し元の切断で止めない（httpClientのタイムアウトで打ち切る）
	ch := c.group.DoChan(key, func() (any, error) {
		entity, err := c.fetchEntity(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			c.cache.Set(key, entity, c.entityTTL)
		}
		return entity, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.WikidataEntity), nil
	}
}

// SearchEntities はフランス語でエンティティを検索する
func (c *Client) SearchEntities(ctx context.Context, query string, limit int) ([]model.WikidataEntity, error) {
	key := SearchKey(query, limit)
	if cached, ok := cache.GetAs[[]model.WikidataEntity](c.cache, key); ok {
		return cached, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		results, err := c.search(context.WithoutCancel(ctx), query, limit)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, results, c.searchTTL)
		return results, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.WikidataEntity), nil
	}
}

func (c *Client) fetchEntity(ctx context.Context, id string) (entity *model.WikidataEntity, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("wikidata", start, err) }()

	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", id)
	params.Set("format", "json")
	params.Set("origin", "*")

	var resp entitiesResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("Wikidataエンティティ %s の取得に失敗: %w", id, err)
	}

	raw, ok := resp.Entities[id]
	if !ok || raw.Missing != nil {
		return nil, nil
	}
	return raw.toModel(id), nil
}

func (c *Client) search(ctx context.Context, query string, limit int) (results []model.WikidataEntity, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("wikidata", start, err) }()

	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", query)
	params.Set("language", searchLanguage)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")
	params.Set("origin", "*")

	var resp searchResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("Wikidata検索に失敗 (%q): %w", query, err)
	}

	results = make([]model.WikidataEntity, 0, len(resp.Search))
	for _, item := range resp.Search {
		results = append(results, model.WikidataEntity{
			ID:          item.ID,
			Label:       item.Label,
			Description: item.Description,
			Properties:  map[string]json.RawMessage{},
		})
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	return nil
}

// --- Wikidata APIのレスポンスをパースするための構造体 ---

type entitiesResponse struct {
	Entities map[string]rawEntity `json:"entities"`
}

type rawEntity struct {
	ID           string                     `json:"id"`
	Missing      *string                    `json:"missing,omitempty"`
	Labels       map[string]langValue       `json:"labels"`
	Descriptions map[string]langValue       `json:"descriptions"`
	Aliases      map[string][]langValue     `json:"aliases"`
	Claims       map[string]json.RawMessage `json:"claims"`
}

type langValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type coordinateClaim struct {
	Mainsnak struct {
		Datavalue *struct {
			Value struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

type searchResponse struct {
	Search []searchItem `json:"search"`
}

type searchItem struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (e rawEntity) toModel(requestedID string) *model.WikidataEntity {
	id := e.ID
	if id == "" {
		id = requestedID
	}

	label := pickLanguage(e.Labels)
	if label == "" {
		label = id
	}

	properties := e.Claims
	if properties == nil {
		properties = map[string]json.RawMessage{}
	}

	return &model.WikidataEntity{
		ID:          id,
		Label:       label,
		Description: pickLanguage(e.Descriptions),
		Properties:  properties,
		Coordinates: e.coordinates(),
		Aliases:     e.flattenAliases(),
	}
}

// coordinates はP625（座標位置）の最初のクレームから座標を取り出す
func (e rawEntity) coordinates() *model.LatLng {
	raw, ok := e.Claims[coordinateProp]
	if !ok {
		return nil
	}
	var claims []coordinateClaim
	if err := json.Unmarshal(raw, &claims); err != nil || len(claims) == 0 {
		return nil
	}
	dv := claims[0].Mainsnak.Datavalue
	if dv == nil {
		return nil
	}
	return &model.LatLng{Lat: dv.Value.Latitude, Lng: dv.Value.Longitude}
}

// flattenAliases は全言語の別名を言語コード順に平坦化する
func (e rawEntity) flattenAliases() []string {
	if len(e.Aliases) == 0 {
		return nil
	}
	languages := make([]string, 0, len(e.Aliases))
	for lang := range e.Aliases {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	var aliases []string
	for _, lang := range languages {
		for _, alias := range e.Aliases[lang] {
			aliases = append(aliases, alias.Value)
		}
	}
	return aliases
}

func pickLanguage(values map[string]langValue) string {
	for _, lang := range preferredLanguages {
		if v, ok := values[lang]; ok && v.Value != "" {
			return v.Value
		}
	}
	return ""
}
