package main

import (
	"github.com/spf13/cobra"

	"casectl/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	baseURL    string
	apiKeyFile string
	configPath string
	dbPath     string
	timeout    int
	jsonOut    bool
	markdown   bool
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "casectl",
	Short: "Console client for the DFIR case backend",
	Long: "casectl drives the pre-investigation DFIR backend from the terminal:\n" +
		"evidence ingest (text, files, watched directories), per-case semantic\n" +
		"search, case listing, summary generation, and MITRE tag extraction.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.baseURL, "base-url", "", "Backend base URL (default http://localhost:8000)")
	pf.StringVar(&rootFlags.apiKeyFile, "api-key", "", "Path to a file holding the API bearer key")
	pf.StringVar(&rootFlags.configPath, "config", "", "Config file path (default .casectl/config.yaml)")
	pf.StringVar(&rootFlags.dbPath, "db", "", "Session DB path (default .casectl/casectl.db)")
	pf.IntVar(&rootFlags.timeout, "timeout", 0, "Request timeout in seconds")
	pf.BoolVar(&rootFlags.jsonOut, "json", false, "Print raw JSON responses instead of tables")
	pf.BoolVar(&rootFlags.markdown, "markdown", false, "Render tables as Markdown")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
