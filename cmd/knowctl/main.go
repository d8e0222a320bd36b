package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/praxis-labs/knowctl/internal/adapters/driven/config/file"
	"github.com/praxis-labs/knowctl/internal/adapters/driven/embedding"
	"github.com/praxis-labs/knowctl/internal/adapters/driven/embedding/ollama"
	"github.com/praxis-labs/knowctl/internal/adapters/driven/embedding/openai"
	"github.com/praxis-labs/knowctl/internal/adapters/driven/storage/sqlite"
	"github.com/praxis-labs/knowctl/internal/adapters/driving/cli"
	"github.com/praxis-labs/knowctl/internal/chunkers/sentence"
	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
	"github.com/praxis-labs/knowctl/internal/core/services"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// Secrets come from the environment; .env is a convenience.
	_ = godotenv.Load()

	cfg, err := file.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := sqlite.NewStore(cfg.Storage.DataDir, sqlite.WithPolicy(cfg.ReconcilePolicy()))
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("failed to configure embedding backend: %v", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}

	chunker := sentence.New(
		sentence.WithWindow(cfg.Chunking.Window),
		sentence.WithOverlap(cfg.Chunking.Overlap),
	)

	cli.SetServices(cli.Services{
		Ingestor: services.NewIngestionPipeline(store, chunker, embedder),
		Searcher: services.NewSearchService(store, embedder),
		Store:    store,
		Embedder: embedder,
		Version:  version,
	})

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildEmbedder assembles the configured embedding backend, wrapped
// with rate limiting when configured. Returns nil when embeddings are
// disabled.
func buildEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	var svc driven.EmbeddingService

	switch cfg.Embedding.Provider {
	case "", "none":
		return nil, nil

	case "ollama":
		svc = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.EmbeddingTimeout(),
			Dimensions: cfg.Embedding.Dimensions,
		})

	case "openai":
		s, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.EmbeddingTimeout(),
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		svc = s

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}

	return embedding.NewRateLimited(svc, cfg.Embedding.RequestsPerSec, cfg.Embedding.Burst), nil
}
