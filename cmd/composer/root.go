package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-composer/internal/config"
	"github.com/goliatone/go-composer/internal/logging"
	"github.com/goliatone/go-composer/pkg/schema"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "composer",
		Short:         "Compose pages and forms from declarative schemas",
		Long:          `composer renders page and form schemas to HTML, lints them, fills forms on the terminal and hosts them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to the YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("templates", "", "Directory of widget templates overriding the embedded ones")

	root.AddCommand(
		newRenderCmd(),
		newLintCmd(),
		newFillCmd(),
		newImportOpenAPICmd(),
		newServeCmd(),
	)
	return root
}

// loadConfig reads --config and applies the flags shared by every command.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if dir, _ := cmd.Flags().GetString("templates"); dir != "" {
		cfg.TemplatesDir = dir
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// document is a parsed schema file: exactly one of page or form is set.
type document struct {
	page *schema.Page
	form *schema.Form
}

func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if schema.IsFormDocument(path, data) {
		form, err := schema.ParseForm(data, path)
		if err != nil {
			return document{}, err
		}
		if form.ID == "" {
			form.ID = stem(path)
		}
		return document{form: &form}, nil
	}
	page, err := schema.ParsePage(data, path)
	if err != nil {
		return document{}, err
	}
	if page.ID == "" {
		page.ID = stem(path)
	}
	return document{page: &page}, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func writeOutput(cmd *cobra.Command, output string, data []byte) error {
	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Written to %s\n", output)
	return nil
}
