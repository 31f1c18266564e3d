package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/internal/iocache"
	"github.com/huangsam/transcomplex/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveAnalysisBackend reads and validates the analysis backend settings.
// An empty backend means tracking is disabled.
func resolveAnalysisBackend() (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(viper.GetString("analysis-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidAnalysisBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis-backend '%s'", backend)
	}
	connStr := viper.GetString("analysis-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need analysis access without full shared setup.
func analysisSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := resolveAnalysisBackend()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no result caching for analysis commands)
	if err := iocache.InitCaching(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file") // used by export command

	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func analysisMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := resolveAnalysisBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr

	return nil
}

// analysisMigrateSetupWrapper wraps analysisMigrateSetup to provide PreRunE for migrate command.
func analysisMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisMigrateSetup()
}

// requireAnalysisStore returns the analysis store or exits when tracking is disabled.
func requireAnalysisStore(action string) contract.AnalysisStore {
	store := iocache.Manager.GetAnalysisStore()
	if store == nil {
		contract.LogFatal(action, errors.New("analysis tracking is disabled; set --analysis-backend"))
	}
	return store
}

// analysisCmd focused on run history management.
//
// Note: Analysis subcommands use minimal initialization (analysisSetup) instead of
// the full sharedSetup used by scoring commands.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage scoring run history and exports",
	Long: `Manage the history of scoring runs used for trend tracking and reporting.

When enabled with --analysis-backend, transcomplex records every run, storing:
- Run metadata (timestamp, configuration fingerprint and params, duration)
- Per-text scores (overall, tier, family scores, all sub-metrics)
- A hash of every text, never the text itself

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  transcomplex analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  transcomplex analysis export --analysis-backend sqlite --output-file ./export`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all scoring run history",
	Long: `Delete all stored scoring runs and per-text scores.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  transcomplex analysis export --output-file ./backup
  transcomplex analysis clear`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the open handle before the SQLite file goes away
		iocache.CloseCaching()
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, contract.GetAnalysisDBFilePath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about scoring run history.

Displays:
- Backend type and connection status
- Total number of runs and scored texts
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run history status
  transcomplex analysis status`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := requireAnalysisStore("Failed to get analysis status").GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run history to Parquet format for use with analytics tools.

Writes two files into the directory named by --output-file:
- runs.parquet        - metadata about each scoring run
- text_scores.parquet - overall, tier, family and sub-metric scores per text

Requires: --output-file parameter

Examples:
  # Export all data
  transcomplex analysis export --output-file ./export

  # Use with DuckDB for analysis
  duckdb -c "SELECT tier, count(*) FROM read_parquet('export/text_scores.parquet') GROUP BY tier"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := requireAnalysisStore("Failed to export analysis data")
		if err := iocache.ExecuteAnalysisExport(store, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  transcomplex analysis migrate --analysis-backend sqlite

  # Rollback to the initial state
  transcomplex analysis migrate --target-version 0`,
	PreRunE: analysisMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
