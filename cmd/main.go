package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"

	"QualityRadar-App/internal/config"
	"QualityRadar-App/internal/domain/model"
	"QualityRadar-App/internal/handler"
)

var version = "dev"

// CLI はQualityRadar-Appのコマンド定義
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Config  string           `help:"YAML config file." default:"config.yaml" type:"path"`
	EnvFile string           `help:"Dotenv file loaded before environment overrides." default:".env" name:"env-file"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the HTTP API."`
	Export  ExportCmd  `cmd:"" help:"Export the mock issue dataset."`
	Cluster ClusterCmd `cmd:"" help:"Print map clusters for the mock issue dataset."`
}

// ServeCmd はHTTPサーバーを起動する
type ServeCmd struct {
	Port string `help:"Override the listen port."`
}

// ExportCmd はデータセットをファイルに書き出す
type ExportCmd struct {
	Format string `help:"csv, json, xml or quickstatements." default:"csv" short:"f"`
	Out    string `help:"Output file (stdout when empty)." short:"o"`
}

// ClusterCmd はクラスタの概要を表示する
type ClusterCmd struct {
	Zoom int `help:"Map zoom level (config default when negative)." default:"-1"`
}

func (c *CLI) load() (*config.Config, error) {
	cfg, err := config.LoadFromEnvironment(c.Config, c.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	return cfg, nil
}

// Run はHTTPサーバーを起動し、SIGINT/SIGTERMで停止する
func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if s.Port != "" {
		cfg.Server.Port = s.Port
	}
	gin.SetMode(cfg.Server.Mode)

	a := newApp(cfg, time.Now())
	router := handler.NewRouter(a.handlers, cfg, a.metrics)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 %s server starting on %s...", handler.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("サーバーの起動に失敗: %w", err)
	case <-ctx.Done():
	}

	log.Printf("🛑 シャットダウンしています...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	log.Printf("✅ サーバーを停止しました")
	return nil
}

// Run はエクスポートを実行して書き出す
func (e *ExportCmd) Run(cli *CLI) error {
	format, err := model.ParseExportFormat(e.Format)
	if err != nil {
		return err
	}
	cfg, err := cli.load()
	if err != nil {
		return err
	}

	a := newApp(cfg, time.Now())
	result, err := a.exportUseCase.Export(context.Background(), format, model.DefaultFilters())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if e.Out != "" {
		f, err := os.Create(e.Out)
		if err != nil {
			return fmt.Errorf("出力ファイルの作成に失敗: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(result.Content); err != nil {
		return fmt.Errorf("書き出しに失敗: %w", err)
	}
	if e.Out != "" {
		log.Printf("💾 %s に %d件を書き出しました", e.Out, result.IssueCount)
	}
	return nil
}

// Run はクラスタリング結果の概要を表示する
func (c *ClusterCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	zoom := c.Zoom
	if zoom < 0 {
		zoom = cfg.Map.DefaultZoom
	}

	a := newApp(cfg, time.Now())
	resp, err := a.mapUseCase.Clusters(context.Background(), model.DefaultFilters(), zoom)
	if err != nil {
		return err
	}
	printClusters(os.Stdout, resp)
	return nil
}

func printClusters(w io.Writer, resp *model.MapClustersResponse) {
	fmt.Fprintf(w, "zoom %d: %d clusters, %d markers\n", resp.Zoom, len(resp.Clusters), len(resp.Markers))
	for i, cl := range resp.Clusters {
		fmt.Fprintf(w, "  #%d size=%d center=(%.4f, %.4f)\n", i+1, cl.Size(), cl.Center.Lat, cl.Center.Lng)
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("quality-radar"),
		kong.Description("OpenData Quality Radar API server and tools."),
		kong.Vars{"version": version},
	)
	if err := ctx.Run(&cli); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}
