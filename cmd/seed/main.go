// Command seed loads fixture documents (a JSON array) into the configured store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ndsf/awesome-douban/backend/go-services/internal/config"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content/repository"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/database"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
	flag "github.com/spf13/pflag"
)

func main() {
	file := flag.StringP("file", "f", "fixtures/sample.json", "fixture file")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required; the in-memory store does not outlive this process")
	}

	ctx := context.Background()
	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	repo, err := repository.NewMongoRepo(ctx, client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
	if err != nil {
		logger.Fatalf("prepare collection: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatalf("open fixtures: %v", err)
	}
	defer f.Close()
	created, skipped, err := load(ctx, repo, f)
	if err != nil {
		logger.Fatalf("seed: %v", err)
	}
	logger.Infof("seeded %d documents (%d already present)", created, skipped)
}

// load creates every document in r. Documents that already exist are skipped.
func load(ctx context.Context, repo repository.Repository, r io.Reader) (created, skipped int, err error) {
	var docs []*content.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return 0, 0, fmt.Errorf("decode fixtures: %w", err)
	}
	for i, d := range docs {
		if !d.Kind.Valid() {
			return created, skipped, fmt.Errorf("fixture %d: unknown kind %q", i, d.Kind)
		}
		if _, err := repo.Create(ctx, d); err != nil {
			if errors.Is(err, repository.ErrExists) {
				logger.Debugf("skip existing %s", d.Ref())
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("create %s: %w", d.Ref(), err)
		}
		created++
	}
	return created, skipped, nil
}
