package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-composer/pkg/openapi"
	"github.com/goliatone/go-composer/pkg/schema"
)

func newImportOpenAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-openapi <document>",
		Short: "Build a form schema from an OpenAPI operation's request body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			operationID, _ := cmd.Flags().GetString("operation")
			baseURL, _ := cmd.Flags().GetString("base-url")
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			list, _ := cmd.Flags().GetBool("list")

			loader := openapi.NewLoader(openapi.WithHTTPFallback(30 * time.Second))
			data, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			importer := openapi.NewImporter(
				openapi.WithBaseURL(baseURL),
				openapi.WithHoneypot(cfg.Forms.Honeypot),
			)

			if list || operationID == "" {
				operations, err := importer.Operations(cmd.Context(), data)
				if err != nil {
					return err
				}
				for _, id := range sortedOperationIDs(operations) {
					op := operations[id]
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\n", id, op.Method, op.Path)
				}
				return nil
			}

			form, err := importer.FormFromOperation(cmd.Context(), data, operationID)
			if err != nil {
				return err
			}
			encoded, err := encodeForm(form, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, encoded)
		},
	}
	cmd.Flags().String("operation", "", "Operation ID to import; lists operations when empty")
	cmd.Flags().Bool("list", false, "List operations instead of importing")
	cmd.Flags().String("base-url", "", "Prefix for the form action instead of the document's first server")
	cmd.Flags().String("format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringP("output", "o", "", "Output file (stdout if empty)")
	return cmd
}

func encodeForm(form schema.Form, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return yaml.Marshal(form)
	case "json":
		data, err := schema.MarshalForm(form)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func sortedOperationIDs(operations map[string]openapi.Operation) []string {
	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
