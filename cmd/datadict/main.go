// Command datadict builds a data dictionary from tabular research-data
// files and renders, exports, or publishes it.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	datadict "github.com/psych-ds/psychds-r-sub000"
	"github.com/psych-ds/psychds-r-sub000/config"
	"github.com/psych-ds/psychds-r-sub000/reader"
	"github.com/psych-ds/psychds-r-sub000/source"
)

var version = "0.2.0"

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "datadict",
		Short: "Infer a data dictionary from tabular data files",
		Long: `datadict profiles the columns of one or more tabular files and infers,
per distinct column name, a semantic type, value constraints, a
categorical vocabulary, a measurement unit, and a description.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel(cfg.LogLevel),
			}))

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default datadict.yaml).")
	pf.Int("sample-rows", 10000, "Rows sampled per column during classification.")
	pf.Int("categorical-sample-rows", 1000, "Rows sampled per column during the categorical re-scan.")
	pf.Int("max-categorical-values", 50, "Largest categorical vocabulary aggregated automatically.")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error.")
	pf.String("database", "", "Postgres URL for publish.")
	pf.String("schema", "public", "Target schema for publish.")
	pf.String("table", "", "Target table for publish.")

	root.AddCommand(newProfileCmd(), newInspectCmd(), newPublishCmd(), newVersionCmd())

	return root
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// collectSources expands the file and directory arguments into CSV
// sources. Directories are walked for delimited files, compressed or
// not.
func collectSources(args []string) ([]source.Source, error) {
	var sources []source.Source

	add := func(path string) {
		switch filepath.Ext(reader.BasePath(path)) {
		case ".csv", ".tsv":
			f := source.NewCSVFile(path)
			if filepath.Ext(reader.BasePath(path)) == ".tsv" {
				f.Delimiter = '\t'
			}
			sources = append(sources, f)
		}
	}

	for _, arg := range args {
		stat, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !stat.IsDir() {
			add(arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no tabular files found in %s", strings.Join(args, ", "))
	}

	return sources, nil
}

func buildDictionary(cmd *cobra.Command, args []string) (datadict.Dictionary, []source.Source, error) {
	sources, err := collectSources(args)
	if err != nil {
		return nil, nil, err
	}

	b := datadict.NewBuilder(datadict.Options{
		MissingTokens:         cfg.MissingTokens,
		SampleRows:            cfg.SampleRows,
		CategoricalSampleRows: cfg.CategoricalSampleRows,
		MaxCategoricalValues:  cfg.MaxCategoricalValues,
		Logger:                logger,
	})

	dict, err := b.Build(cmd.Context(), sources)
	if err != nil {
		return nil, nil, err
	}

	return dict, sources, nil
}

func newProfileCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "profile <file|dir>...",
		Short: "Build a dictionary and write it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, err := buildDictionary(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(dict)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to a file instead of stdout.")

	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file|dir>...",
		Short: "Build a dictionary and render it as a table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, err := buildDictionary(cmd, args)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Type", "Unit", "Range", "Values", "Req", "Uniq", "Description"})

			for _, v := range dict.Variables() {
				var rng string
				if v.MinValue != "" || v.MaxValue != "" {
					rng = v.MinValue + ".." + v.MaxValue
				}

				var vals []string
				for _, cv := range v.Values {
					vals = append(vals, cv.Value)
				}

				t.AppendRow(table.Row{
					v.Name, v.Type.String(), v.Unit, rng,
					strings.Join(vals, ", "),
					checkmark(v.Required), checkmark(v.Unique),
					v.Description,
				})
			}

			t.Render()
			return nil
		},
	}
}

func checkmark(b bool) string {
	if b {
		return "x"
	}
	return ""
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datadict %s\n", version)
		},
	}
}

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <file|dir>...",
		Short: "Build a dictionary and load it into Postgres",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Database == "" {
				return fmt.Errorf("a database URL is required (--database or DATADICT_DATABASE)")
			}

			tableName := cfg.Table
			if tableName == "" {
				base := filepath.Base(reader.BasePath(args[0]))
				tableName = strings.TrimSuffix(base, filepath.Ext(base))
			}

			dict, sources, err := buildDictionary(cmd, args)
			if err != nil {
				return err
			}

			db, err := sql.Open("postgres", cfg.Database)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			p := datadict.NewPublisher(db, logger)

			return p.Publish(cmd.Context(), &datadict.PublishRequest{
				Schema:        cfg.Schema,
				Table:         tableName,
				Dictionary:    dict,
				Sources:       sources,
				SampleRows:    cfg.SampleRows,
				MissingTokens: cfg.MissingTokens,
			})
		},
	}
}
