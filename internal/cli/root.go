// Package cli implements the recommender CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/catalog"
	"github.com/rcliao/shop-recommender/internal/config"
	"github.com/rcliao/shop-recommender/internal/logger"
	"github.com/rcliao/shop-recommender/internal/session"
	"github.com/rcliao/shop-recommender/internal/store"
)

var (
	dbPath      string
	storeKind   string
	formatFlag  string
	configPath  string
	catalogPath string
	actionsPath string
	debugFlag   bool

	cfg = config.DefaultConfig()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recommender",
	Short: "Conversational product recommendations",
	Long: "A shopping assistant core: classifies chat messages, extracts product filters, " +
		"keeps conversation context and scores catalog products. SQLite-backed, single binary.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { logger.Sync() },
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RECOMMENDER_DB or ~/.shop-recommender/conversations.db)")
	RootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Conversation store: sqlite or memory (default: $RECOMMENDER_STORE or sqlite)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (JSON or YAML)")
	RootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Product catalog file (default: $RECOMMENDER_CATALOG)")
	RootCmd.PersistentFlags().StringVar(&actionsPath, "actions", "", "Shopper action log file (default: $RECOMMENDER_ACTIONS)")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// setup layers flags over the file and environment configuration.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		loaded.DBPath = dbPath
	}
	if storeKind != "" {
		loaded.Store = storeKind
	}
	if catalogPath != "" {
		loaded.CatalogPath = catalogPath
	}
	if actionsPath != "" {
		loaded.ActionsPath = actionsPath
	}
	if debugFlag {
		loaded.LogLevel = "debug"
	}
	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("unknown format %q (want json or text)", formatFlag)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	lvl, _ := logger.ParseLevel(loaded.LogLevel)
	logger.Init(logger.Options{Level: lvl})
	cfg = loaded
	return nil
}

func openStore() (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(cfg.DBPath)
}

// openSQLite is for commands that only make sense on a persistent store.
func openSQLite() (*store.SQLiteStore, error) {
	if cfg.Store != config.StoreSQLite {
		return nil, errors.New("this command needs --store sqlite")
	}
	return store.NewSQLiteStore(cfg.DBPath)
}

func newManager(s store.Store) *session.Manager {
	return session.NewManager(s,
		session.WithRecommendationLimit(cfg.RecommendationLimit),
		session.WithMinScore(cfg.MinScore),
		session.WithHistoryLimit(cfg.HistoryLimit),
	)
}

// loadCatalog returns an empty catalog when no catalog file is configured.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.New(nil, nil), nil
	}
	return catalog.Load(cmd.Context(), cfg.CatalogPath, cfg.ActionsPath)
}

func textFormat() bool { return formatFlag == "text" }

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	logger.DebugCF("cli", "Command failed", map[string]interface{}{"step": msg, "error": err})
	logger.Sync()
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
