// -----------------------------------------------------------------------
// biocache-index: the occurrence indexing pipeline's command-line driver.
// -----------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/docbuilder"
	"github.com/ternarybob/biocache-indexer/internal/engine"
	"github.com/ternarybob/biocache-indexer/internal/index"
	"github.com/ternarybob/biocache-indexer/internal/namematch"
	"github.com/ternarybob/biocache-indexer/internal/progress"
	"github.com/ternarybob/biocache-indexer/internal/rowstore"
	"github.com/ternarybob/biocache-indexer/internal/rowstore/badgerstore"
	"github.com/ternarybob/biocache-indexer/internal/vocab"
)

// configPaths is a custom flag type allowing multiple -config flags,
// later files overriding earlier ones during layered config load.
type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }
func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: biocache-index <reindex|resample|serve> [flags]")
		os.Exit(2)
	}

	subcommand := os.Args[1]
	fs := flagSetFor(subcommand)

	var configFiles configPaths
	fs.Var(&configFiles, "config", "Configuration file path (repeatable, later files win)")
	showVersion := fs.Bool("version", false, "Print version information")
	startDateFlag := fs.String("start-date", "", "RFC3339 watermark for incremental reindexing (reindex only)")
	commitAtEnd := fs.Bool("commit", true, "Issue a final hard commit (reindex/resample only)")
	optimise := fs.Bool("optimise", false, "Optimise the index after finalising (reindex/resample only)")

	fs.Parse(os.Args[2:])

	if *showVersion {
		fmt.Printf("biocache-index %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER): load config -> init logger ->
	// print banner.
	cfg, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("biocache-index: failed to load configuration")
		os.Exit(1)
	}

	logger := common.SetupLogger(cfg)
	common.InstallCrashHandler("./logs")
	common.PrintBanner(cfg, logger)

	deps, err := buildDependencies(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("biocache-index: failed to initialize dependencies")
		os.Exit(1)
	}
	defer deps.rowStore.Close()

	ctx, cancel := signalContext()
	defer cancel()

	switch subcommand {
	case "reindex":
		runReindex(ctx, deps, parseStartDate(*startDateFlag, logger), *commitAtEnd, *optimise)
	case "resample":
		runResample(ctx, deps, *commitAtEnd, *optimise)
	case "serve":
		runServe(ctx, deps)
	default:
		fmt.Fprintf(os.Stderr, "biocache-index: unknown subcommand %q (want reindex, resample, or serve)\n", subcommand)
		os.Exit(2)
	}

	common.PrintShutdownBanner(logger)
	common.Stop()
}

func flagSetFor(subcommand string) *flagSet {
	return newFlagSet(subcommand)
}

func parseStartDate(value string, logger arbor.ILogger) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		logger.Fatal().Err(err).Str("start_date", value).Msg("biocache-index: invalid -start-date, want RFC3339")
		return nil
	}
	return &t
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	common.SafeGo(common.GetLogger(), "main.signalWatcher", func() {
		<-sigs
		cancel()
	})
	return ctx, cancel
}

// dependencies holds every collaborator the three subcommands share,
// constructed once from cfg and passed explicitly instead of living
// behind process-wide singletons.
type dependencies struct {
	cfg            *common.Config
	logger         arbor.ILogger
	rowStore       rowstore.RowStore
	nameMatch      vocab.NameLookup
	assertionCodes *vocab.AssertionCodes
	speciesGroups  *vocab.SpeciesGroups
	speciesLists   *vocab.TaxonSpeciesListDAO
	checklist      *vocab.ChecklistCache
	adapter        *index.Adapter
	schema         *docbuilder.Schema
	broadcaster    *progress.Broadcaster
}

func buildDependencies(cfg *common.Config, logger arbor.ILogger) (*dependencies, error) {
	rs, err := buildRowStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("row store: %w", err)
	}

	var nameLookup vocab.NameLookup
	if cfg.NameMatch.BaseURL != "" {
		nameLookup = namematch.New(cfg.NameMatch.BaseURL, cfg.NameMatch.Timeout, logger)
	}

	subgroupDefs, err := vocab.LoadSubgroupDescriptor(cfg.Vocab.SpeciesSubgroupsURL)
	if err != nil {
		logger.Warn().Err(err).Msg("biocache-index: failed to load species-subgroups descriptor, continuing with none")
	}
	speciesGroups := vocab.NewSpeciesGroups(nameLookup, vocab.DefaultStaticGroups(), subgroupDefs, func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	})

	adapter, err := index.New(&cfg.Index, logger)
	if err != nil {
		return nil, fmt.Errorf("index adapter: %w", err)
	}

	checklist := vocab.NewChecklistCache(cfg.Vocab.ChecklistFile)
	if cfg.Vocab.ChecklistFile != "" {
		size, err := checklist.Size()
		if err != nil {
			return nil, fmt.Errorf("checklist cache: %w", err)
		}
		logger.Info().Int("guids", size).Str("file", cfg.Vocab.ChecklistFile).Msg("biocache-index: checklist cache loaded")
	}

	return &dependencies{
		cfg:            cfg,
		logger:         logger,
		rowStore:       rs,
		nameMatch:      nameLookup,
		assertionCodes: vocab.NewAssertionCodes(),
		speciesGroups:  speciesGroups,
		speciesLists:   vocab.NewTaxonSpeciesListDAO(noopSpeciesListSource{}, cfg.Vocab.SpeciesListCacheTTL),
		checklist:      checklist,
		adapter:        adapter,
		schema:         docbuilder.NewSchema(docbuilder.DefaultSchema()),
		broadcaster:    progress.NewBroadcaster(logger),
	}, nil
}

// buildRowStore always opens the badgerhold-backed dev-mode row store,
// in the directory named by cfg.RowStore.Hosts[0] when set, else in
// ./data/rowstore. A production RowStore client is out of scope here.
func buildRowStore(cfg *common.Config, logger arbor.ILogger) (rowstore.RowStore, error) {
	dir := "./data/rowstore"
	if len(cfg.RowStore.Hosts) > 0 {
		dir = cfg.RowStore.Hosts[0]
	}
	return badgerstore.Open(logger, dir)
}

// noopSpeciesListSource is the SpeciesListSource buildDependencies always
// wires in (cfg.Vocab.SpeciesListDAOURL is not read): lookups return no
// lists rather than failing the record.
type noopSpeciesListSource struct{}

func (noopSpeciesListSource) ListUIDsForTaxon(ctx context.Context, taxonConceptID string) ([]string, error) {
	return nil, nil
}

// newEngine constructs one Engine with its own Builder and RecycleDoc
// pool, sharing every other dependency. Each AddDocThread worker gets its
// own Engine so document mutation never crosses goroutines.
func (d *dependencies) newEngine() *engine.Engine {
	pool := docbuilder.NewPool(4)
	builder := docbuilder.NewBuilder(d.schema, d.adapter, pool, d.logger)
	return engine.New(builder, d.rowStore, d.assertionCodes, d.speciesGroups, d.speciesLists, d.logger)
}

func (d *dependencies) engineOptions(startDate *time.Time) engine.Options {
	return engine.Options{
		StartDate: startDate,
		Misc: engine.MiscFieldConfig{
			IndexProperties:            d.cfg.Index.MiscIndexProperties,
			UserProvidedTypeProperties: d.cfg.Index.UserTypedMiscIndexProperties,
			AdditionalFields:           d.cfg.Index.AdditionalFieldsToIndex,
		},
		GridRefIndexingEnabled: d.cfg.Index.GridRefIndexingEnabled,
		BatchID:                common.NewBatchID(),
	}
}

// startProgressServer starts the progress websocket endpoint in the background
// when Progress.Enabled, returning a shutdown func.
func (d *dependencies) startProgressServer() func(context.Context) error {
	if !d.cfg.Progress.Enabled {
		return func(context.Context) error { return nil }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/progress", d.broadcaster.HandleWebSocket)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", d.cfg.Progress.Port), Handler: mux}

	common.SafeGo(d.logger, "main.progressServer", func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			d.logger.Error().Err(err).Msg("biocache-index: progress server stopped unexpectedly")
		}
	})
	d.logger.Info().Int("port", d.cfg.Progress.Port).Msg("biocache-index: progress websocket listening")

	return srv.Shutdown
}
