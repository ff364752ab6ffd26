// Package config はデフォルト値・YAMLファイル・.env・環境変数を重ねて設定を読み込む
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config アプリケーション全体の設定
type Config struct {
	Server Server `yaml:"server"`
	API    API    `yaml:"api"`
	Map    Map    `yaml:"map"`
	Mock   Mock   `yaml:"mock"`
	Table  Table  `yaml:"table"`
}

// Server HTTPサーバーの設定
type Server struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // gin のモード: debug | release | test
}

// API 外部APIとレスポンスキャッシュの設定
type API struct {
	WikidataBaseURL string        `yaml:"wikidata_base_url"`
	OverpassBaseURL string        `yaml:"overpass_base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	EntityTTL       time.Duration `yaml:"entity_ttl"`
	SearchTTL       time.Duration `yaml:"search_ttl"`
	OverpassTTL     time.Duration `yaml:"overpass_ttl"`
}

// Map 地図表示とクラスタリングの設定
type Map struct {
	ClusterRadius  float64   `yaml:"cluster_radius"`   // 度
	ClusterMaxZoom int       `yaml:"cluster_max_zoom"` // このズーム以上はクラスタリングしない
	DefaultCenter  []float64 `yaml:"default_center"`   // [緯度, 経度]
	DefaultZoom    int       `yaml:"default_zoom"`
	MinZoom        int       `yaml:"min_zoom"`
	MaxZoom        int       `yaml:"max_zoom"`
}

// Mock デモ用データセットの設定
type Mock struct {
	IssueCount   int   `yaml:"issue_count"`
	EventCount   int   `yaml:"event_count"`
	Seed         int64 `yaml:"seed"` // 0なら起動時刻から決める
	TotalChecked int   `yaml:"total_checked"`
}

// Table 問題一覧の設定
type Table struct {
	PageSize        int   `yaml:"page_size"`
	PageSizeOptions []int `yaml:"page_size_options"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Port: "8080",
			Mode: "debug",
		},
		API: API{
			WikidataBaseURL: "https://www.wikidata.org/w/api.php",
			OverpassBaseURL: "https://overpass-api.de/api/interpreter",
			Timeout:         30 * time.Second,
			EntityTTL:       10 * time.Minute,
			SearchTTL:       5 * time.Minute,
			OverpassTTL:     10 * time.Minute,
		},
		Map: Map{
			ClusterRadius:  50,
			ClusterMaxZoom: 14,
			DefaultCenter:  []float64{46.2276, 2.2137},
			DefaultZoom:    6,
			MinZoom:        3,
			MaxZoom:        18,
		},
		Mock: Mock{
			IssueCount:   50,
			EventCount:   10,
			TotalChecked: 1250,
		},
		Table: Table{
			PageSize:        50,
			PageSizeOptions: []int{25, 50, 100, 200},
		},
	}
}

// Load は1つのYAMLファイルを読み込む
// ファイルが存在しない、または空の場合はデフォルト値を返す
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered は複数のYAMLファイルを順に重ねて読み込む（後のファイルが優先）
// 存在しないファイルは読み飛ばす。未知のキーはエラーにする
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadFromEnvironment はYAMLファイル、.env、環境変数の順に重ねて設定を作り、検証する
func LoadFromEnvironment(configPath, envFile string) (*Config, error) {
	cfg, err := LoadLayered(configPath)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: %s の読み込みに失敗: %w", envFile, err)
			}
			log.Printf("⚠️ %s が見つかりません。システムの環境変数を使用します", envFile)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %s の読み込みに失敗: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// コメントだけのファイルはEOFになる
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: %s のパースに失敗: %w", path, err)
	}
	return nil
}

// ApplyEnv は環境変数で設定を上書きする
// 対応する変数: PORT, WIKIDATA_BASE_URL, OVERPASS_BASE_URL, API_TIMEOUT, MOCK_ISSUE_COUNT, MOCK_SEED
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("WIKIDATA_BASE_URL"); v != "" {
		c.API.WikidataBaseURL = v
	}
	if v := os.Getenv("OVERPASS_BASE_URL"); v != "" {
		c.API.OverpassBaseURL = v
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: API_TIMEOUT %q が不正です: %w", v, err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("MOCK_ISSUE_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MOCK_ISSUE_COUNT %q が不正です: %w", v, err)
		}
		c.Mock.IssueCount = n
	}
	if v := os.Getenv("MOCK_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: MOCK_SEED %q が不正です: %w", v, err)
		}
		c.Mock.Seed = n
	}
	return nil
}

// Validate は設定値が使用可能かチェックする
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server.port は必須です")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode は debug / release / test のいずれかです: %q", c.Server.Mode)
	}
	if c.API.WikidataBaseURL == "" || c.API.OverpassBaseURL == "" {
		return errors.New("config: api のベースURLは必須です")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout は正の値が必要です: %v", c.API.Timeout)
	}
	// 0以下はクライアント側で既定値扱いになるため受け付けない
	if c.API.EntityTTL <= 0 || c.API.SearchTTL <= 0 || c.API.OverpassTTL <= 0 {
		return errors.New("config: api のTTLは正の値が必要です")
	}
	if c.Map.ClusterRadius <= 0 {
		return fmt.Errorf("config: map.cluster_radius は正の値が必要です: %v", c.Map.ClusterRadius)
	}
	if c.Map.MinZoom < 0 || c.Map.MinZoom > c.Map.MaxZoom {
		return fmt.Errorf("config: map.min_zoom (%d) と map.max_zoom (%d) が不正です", c.Map.MinZoom, c.Map.MaxZoom)
	}
	if c.Map.DefaultZoom < c.Map.MinZoom || c.Map.DefaultZoom > c.Map.MaxZoom {
		return fmt.Errorf("config: map.default_zoom (%d) がズーム範囲外です", c.Map.DefaultZoom)
	}
	if len(c.Map.DefaultCenter) != 2 {
		return errors.New("config: map.default_center は [緯度, 経度] の2要素が必要です")
	}
	if c.Mock.IssueCount < 0 || c.Mock.EventCount < 0 {
		return errors.New("config: mock の件数は負にできません")
	}
	if c.Mock.TotalChecked < 0 {
		return fmt.Errorf("config: mock.total_checked は負にできません: %d", c.Mock.TotalChecked)
	}
	if c.Table.PageSize <= 0 {
		return fmt.Errorf("config: table.page_size は正の値が必要です: %d", c.Table.PageSize)
	}
	return nil
}

// Address はサーバーの待ち受けアドレス
func (c *Config) Address() string {
	return ":" + c.Server.Port
}
