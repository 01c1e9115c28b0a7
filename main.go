package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"tseda/adapters/sqlite"
	"tseda/adapters/tszip"
	"tseda/app"
	"tseda/internal"
	"tseda/internal/config"
	"tseda/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tseda",
		Short: "Exploratory dashboard for tree-sequence data",
	}

	rootCmd.AddCommand(
		newPreprocessCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment. Flags layer on top of the
// result in the command handlers.
func loadConfig() (*config.Config, error) {
	// A missing .env just means the environment is authoritative.
	_ = godotenv.Load()
	return config.Load()
}

func newPreprocessCmd() *cobra.Command {
	var outPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "preprocess [file.trees.tsz]",
		Short: "Convert a compressed tree-sequence dump into a .tseda file",
		Long: `Read a compressed tree-sequence dump, validate its tables, derive one
sample set per population, and write everything to a .tseda file that
the serve command can open.

Example: tseda preprocess data/example.trees.tsz -o example.tseda`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if logLevel == "" {
				logLevel = cfg.Log.Level
			}
			logger := internal.NewLogger(internal.ParseLogLevel(logLevel))

			pre := app.NewPreprocessor(tszip.NewReader(), logger)
			result, err := pre.Run(cmd.Context(), args[0], outPath)
			if err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", result.OutputPath)
			fmt.Printf("  sequence length: %v\n", result.SequenceLength)
			fmt.Printf("  nodes: %d, edges: %d, sites: %d\n",
				result.NumNodes, result.NumEdges, result.NumSites)
			fmt.Printf("  individuals: %d, sample sets: %d, trees: %d\n",
				result.NumIndividuals, result.NumSampleSets, result.NumTrees)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output .tseda path (default: next to the input)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: DEBUG|INFO|WARN|ERROR")

	return cmd
}

func newServeCmd() *cobra.Command {
	var port int
	var host string
	var admin bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve [file.trees.tseda]",
		Short: "Serve the dashboard for a preprocessed .tseda file",
		Long: `Open a .tseda file and serve the dashboard on the configured port.
Selection and sample-set edits live in memory for the session; the
file itself is never modified.

Example: tseda serve example.trees.tseda --port 8080 --admin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("admin") {
				cfg.Server.Admin = admin
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			dataFile := cfg.Paths.DataFile
			if len(args) == 1 {
				dataFile = args[0]
			}
			if dataFile == "" {
				return fmt.Errorf("no data file: pass a .tseda path or set TSEDA_FILE")
			}

			logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
			log := logger.Component("Serve")

			store, err := sqlite.Open(dataFile)
			if err != nil {
				return err
			}
			defer store.Close()

			ds, err := app.LoadDataStore(cmd.Context(), store, logger)
			if err != nil {
				return err
			}

			webApp, err := ui.NewApp(ds, logger, cfg.Server.Admin)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			log.Info("serving %s on http://%s (session %s)", dataFile, addr, ds.Session())

			server := &http.Server{
				Addr:              addr,
				Handler:           webApp.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return server.ListenAndServe()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&host, "host", "localhost", "Host to bind")
	cmd.Flags().BoolVar(&admin, "admin", false, "Expose the /admin status endpoint")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: DEBUG|INFO|WARN|ERROR")

	return cmd
}
