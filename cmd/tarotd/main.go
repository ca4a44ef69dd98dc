package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/plootony/MISTY/internal/adapters/catalog"
	"github.com/plootony/MISTY/internal/adapters/decks"
	"github.com/plootony/MISTY/internal/adapters/llm/mistral"
	"github.com/plootony/MISTY/internal/adapters/store/sqlite"
	"github.com/plootony/MISTY/internal/app"
	"github.com/plootony/MISTY/internal/config"
	"github.com/plootony/MISTY/internal/ratelimit"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tarotd",
		Short:        "Tarot reading service backed by Mistral",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newCheckCmd(), newZodiacCmd(), newTariffCmd())
	return root
}

// appEnv carries what every command needs after startup.
type appEnv struct {
	cfg    config.Config
	logger *slog.Logger
}

func loadEnv() (appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return appEnv{}, fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return appEnv{cfg: cfg, logger: logger}, nil
}

// newReadingService builds the single provider client and the limiter all
// provider calls go through.
func (e appEnv) newReadingService() (*app.ReadingService, error) {
	client, err := mistral.NewClient(
		&http.Client{Timeout: e.cfg.LLMTimeout},
		e.cfg.MistralAPIKey,
		e.cfg.MistralBaseURL,
		e.cfg.LLMModel,
		e.logger,
	)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.New(e.cfg.RateLimitInterval,
		ratelimit.WithMaxQueue(e.cfg.RateLimitMaxQueue),
		ratelimit.WithLogger(e.logger),
	)
	return app.NewReadingService(client, limiter, e.logger), nil
}

func (e appEnv) loadCatalog() (*catalog.Catalog, error) {
	if e.cfg.CatalogPath == "" {
		return catalog.Default()
	}
	return catalog.Load(e.cfg.CatalogPath)
}

// newTarotService wires the full service. The returned store must be closed.
func (e appEnv) newTarotService(ai *app.ReadingService) (*app.TarotService, *sqlite.Store, error) {
	cat, err := e.loadCatalog()
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	store, err := sqlite.Open(e.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	svc := app.NewTarotService(app.Deps{
		Decks:    decks.NewEmbeddedStore(),
		Catalog:  cat,
		Profiles: store,
		Readings: store,
		AI:       ai,
		RNG:      stdRNG{},
		DeckID:   decks.DefaultDeckID,
		Model:    e.cfg.LLMModel,
	})
	return svc, store, nil
}
