// Command initdata seeds a running server with one demo account and a batch
// of fake notes spread across every category.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

type seedConfig struct {
	baseURL  string
	email    string
	password string
	count    int
	workers  int
}

func loadSeedConfig() seedConfig {
	v := viper.New()
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("SEED_EMAIL", "demo@example.com")
	v.SetDefault("SEED_PASSWORD", "Password123")
	v.SetDefault("SEED_COUNT", 200)
	v.SetDefault("SEED_WORKERS", 8)
	v.AutomaticEnv()

	var c seedConfig
	flag.StringVar(&c.baseURL, "url", v.GetString("API_BASE_URL"), "server base URL")
	flag.StringVar(&c.email, "email", v.GetString("SEED_EMAIL"), "account email")
	flag.StringVar(&c.password, "pass", v.GetString("SEED_PASSWORD"), "account password")
	flag.IntVar(&c.count, "n", v.GetInt("SEED_COUNT"), "notes to create")
	flag.IntVar(&c.workers, "workers", v.GetInt("SEED_WORKERS"), "concurrent requests")
	flag.Parse()
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}

type client struct {
	http    *http.Client
	baseURL string
}

func (c *client) post(ctx context.Context, path, token string, in, out any) (int, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s: %d %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out != nil {
		return resp.StatusCode, json.Unmarshal(body, out)
	}
	return resp.StatusCode, nil
}

// signIn registers the account, or logs in when it already exists.
func signIn(ctx context.Context, c *client, email, password string, log *slog.Logger) (string, error) {
	creds := map[string]string{"email": email, "password": password}

	var out auth.AuthResponse
	status, err := c.post(ctx, "/api/v1/auth/register", "", creds, &out)
	if err == nil {
		log.Info("registered demo account", "user_id", out.User.UserID)
		return out.Tokens.Access, nil
	}
	if status != http.StatusBadRequest {
		return "", err
	}

	if _, err := c.post(ctx, "/api/v1/auth/login", "", creds, &out); err != nil {
		return "", err
	}
	log.Info("signed in to existing account", "user_id", out.User.UserID)
	return out.Tokens.Access, nil
}

func fakeNote(categories []notes.Category) notes.CreateNoteRequest {
	return notes.CreateNoteRequest{
		Title:    gofakeit.Sentence(gofakeit.Number(2, 6)),
		Content:  gofakeit.Paragraph(1, 3, 20, "\n"),
		Category: string(categories[gofakeit.Number(0, len(categories)-1)]),
	}
}

func seed(ctx context.Context, c *client, token string, cfg seedConfig, log *slog.Logger) error {
	categories := notes.Categories()
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i := 0; i < cfg.count; i++ {
		g.Go(func() error {
			if _, err := c.post(ctx, "/api/v1/notes", token, fakeNote(categories), nil); err != nil {
				return err
			}
			if n := done.Add(1); n%50 == 0 || n == int64(cfg.count) {
				log.Info("progress", "created", n, "total", cfg.count)
			}
			return nil
		})
	}
	return g.Wait()
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := loadSeedConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &client{http: &http.Client{Timeout: 10 * time.Second}, baseURL: cfg.baseURL}

	token, err := signIn(ctx, c, cfg.email, cfg.password, log)
	if err != nil {
		log.Error("could not obtain a token", "error", err)
		os.Exit(1)
	}

	if err := seed(ctx, c, token, cfg, log); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("done", "notes", cfg.count, "url", cfg.baseURL)
}
