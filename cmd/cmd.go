// Package cmd defines the command-line interface for transcomplex.
package cmd

import (
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-family scores")
	rootCmd.PersistentFlags().Bool("explain", false, "Print raw values, skipped families and the top contributing metrics")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or ndjson or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: error or warn or info or debug")

	// Input selection, shared by batch, check and the default limits of mcp and serve
	rootCmd.PersistentFlags().String("split", string(schema.SplitFile), "How to cut files into texts: file or line or paragraph")
	rootCmd.PersistentFlags().String("glob", "", "Comma-separated doublestar patterns of files to score (e.g. 'docs/**/*.md')")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().Bool("sort", false, "Rank results by overall score, highest first")
	rootCmd.PersistentFlags().IntP("limit", "l", 0, "Number of results to display (0 = all)")
	rootCmd.PersistentFlags().String("text-timeout", contract.DefaultTextTimeout.String(), "Maximum time spent scoring one text (0 disables)")
	rootCmd.PersistentFlags().String("lexicon-file", "", "TOML file overriding the built-in idiom, domain and common-word lists")

	// Embeddings endpoint for semantic complexity
	rootCmd.PersistentFlags().String("embedder-url", "", "Base URL of an OpenAI-compatible embeddings API (empty disables semantic complexity)")
	rootCmd.PersistentFlags().String("embedder-model", contract.DefaultEmbedderModel, "Embedding model name")
	rootCmd.PersistentFlags().String("embedder-api-key", "", "API key for the embeddings endpoint (prefer TRANSCOMPLEX_EMBEDDER_API_KEY)")
	rootCmd.PersistentFlags().Float64("embedder-rps", 0, "Maximum embedding requests per second (0 = unlimited)")
	rootCmd.PersistentFlags().Int("embedder-concurrency", contract.DefaultEmbedderConcurrency, "Maximum concurrent embedding requests")
	rootCmd.PersistentFlags().String("embedder-timeout", contract.DefaultEmbedderTimeout.String(), "Timeout of one embedding request")
	rootCmd.PersistentFlags().Int("embedder-retries", contract.DefaultEmbedderRetries, "Retries of a failed embedding request")

	// Persistence
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Result cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for mysql/postgresql/redis (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Connection string for run history (must differ from cache-db-connect)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("fail-tier", "", "Fail when any text reaches this tier (e.g. high)")
	checkCmd.Flags().Float64("max-score", contract.DefaultMaxScore, "Fail when any overall score exceeds this value")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the HTTP server listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
