package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration for the indexing pipeline.
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	RowStore    RowStoreConfig  `toml:"row_store"`
	NameMatch   NameMatchConfig `toml:"name_match"`
	Index       IndexConfig     `toml:"index"`
	Vocab       VocabConfig     `toml:"vocab"`
	Reindex     ReindexConfig   `toml:"reindex"`
	CSV         CSVConfig       `toml:"csv"`
	Logging     LoggingConfig   `toml:"logging"`
	Progress    ProgressConfig  `toml:"progress"`
}

// RowStoreConfig describes how to reach the wide-column row store (§6,
// out of scope for this repo beyond the interface it exposes).
type RowStoreConfig struct {
	Hosts          []string `toml:"hosts" validate:"required,min=1"`
	Table          string   `toml:"table" validate:"required"`
	ConnectionPool int      `toml:"connection_pool" validate:"min=1"`
}

// NameMatchConfig describes how to reach the name-matching index (§6).
type NameMatchConfig struct {
	BaseURL string        `toml:"base_url" validate:"required,url"`
	Timeout time.Duration `toml:"timeout"`
}

// IndexConfig configures the index backend adapter (§4.4) and the
// batch/commit protocol (§3, §4.5).
type IndexConfig struct {
	BackendURL               string        `toml:"backend_url" validate:"required"`
	BatchSize                int           `toml:"batch_size" validate:"min=1"`
	HardCommitSize           int           `toml:"hardcommit_size" validate:"min=1"`
	FacetPageSize            int           `toml:"facet_page_size" validate:"min=1"`
	ReadPageSize             int           `toml:"read_page_size" validate:"min=1"`
	OperationTimeout         time.Duration `toml:"operation_timeout"`
	RemoteThreads            int           `toml:"remote_threads" validate:"min=1"`
	ClusterDefaultCollection string        `toml:"cluster_default_collection"`
	IdleFlushInterval        time.Duration `toml:"idle_flush_interval"`
	GridRefIndexingEnabled   bool          `toml:"grid_ref_indexing_enabled"`

	MiscIndexProperties          []string `toml:"misc_index_properties"`
	UserTypedMiscIndexProperties []string `toml:"user_typed_misc_index_properties"`
	AdditionalFieldsToIndex      []string `toml:"additional_fields_to_index"`
}

// VocabConfig configures the vocabulary caches (§4.2).
type VocabConfig struct {
	SpeciesSubgroupsURL string        `toml:"species_subgroups_url"`
	ChecklistFile       string        `toml:"checklist_file"`
	SpeciesListDAOURL   string        `toml:"species_list_dao_url"`
	SpeciesListCacheTTL time.Duration `toml:"species_list_cache_ttl"`
}

// ReindexConfig configures the bulk/incremental reindex driver.
type ReindexConfig struct {
	StartDate string `toml:"start_date"` // RFC3339; empty means full reindex
	Schedule  string `toml:"schedule"`   // cron expression for the scheduled driver
	Workers   int    `toml:"workers" validate:"min=1"`
}

// CSVConfig configures the optional CSV side-channel emission (§6).
type CSVConfig struct {
	Enabled          bool     `toml:"enabled"`
	OutputPath       string   `toml:"output_path"`
	SensitiveColumns []string `toml:"sensitive_columns"`
}

// LoggingConfig controls arbor's level, output sinks, and timestamp format.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
}

// ProgressConfig configures the websocket progress broadcaster.
type ProgressConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// defaultConfig returns a Config populated with this pipeline's defaults.
func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Index: IndexConfig{
			BatchSize:                500,
			HardCommitSize:           5000,
			FacetPageSize:            1000,
			ReadPageSize:             5000,
			OperationTimeout:         30 * time.Second,
			RemoteThreads:            4,
			ClusterDefaultCollection: "biocache1",
			IdleFlushInterval:        30 * time.Second,
		},
		Vocab: VocabConfig{
			SpeciesListCacheTTL: 6 * time.Hour,
		},
		Reindex: ReindexConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Progress: ProgressConfig{
			Port: 8099,
		},
	}
}

// LoadFromFiles loads configuration starting from defaults, then merges each
// file in order (later files win), then applies environment overrides.
// Unknown keys in a TOML file are ignored.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := defaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies a small set of environment variable overrides,
// the ones the CLI does not already expose as flags.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BIOCACHE_INDEX_BACKEND_URL"); v != "" {
		cfg.Index.BackendURL = v
	}
	if v := os.Getenv("BIOCACHE_ROW_STORE_HOSTS"); v != "" {
		cfg.RowStore.Hosts = strings.Split(v, ",")
	}
	if v := os.Getenv("BIOCACHE_NAME_MATCH_URL"); v != "" {
		cfg.NameMatch.BaseURL = v
	}
}

var configValidator = validator.New()

// validateConfig runs struct-tag validation over the loaded configuration.
// Configuration errors are fatal at startup.
func validateConfig(cfg *Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		return err
	}
	if _, err := ClassifyIndexBackendURL(cfg.Index.BackendURL); err != nil {
		return fmt.Errorf("index.backend_url: %w", err)
	}
	if cfg.Index.HardCommitSize < cfg.Index.BatchSize {
		return fmt.Errorf("index.hardcommit_size (%d) must be >= index.batch_size (%d)",
			cfg.Index.HardCommitSize, cfg.Index.BatchSize)
	}
	return nil
}
