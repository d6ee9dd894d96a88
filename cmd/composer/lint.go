package main

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/validation"
)

var errLintFailed = errors.New("lint found problems")

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <schema-file>...",
		Short: "Check schemas for unknown components, rules and duplicate ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			pages := components.NewPageRegistry()
			fields := components.NewFieldRegistry()
			rules := validation.NewRuleSet()

			results := make(map[string]validation.LintResult, len(args))
			failed := false
			for _, path := range args {
				var result validation.LintResult
				doc, err := readDocument(path)
				switch {
				case err != nil:
					result = validation.LintResult{Issues: []validation.Issue{{Message: err.Error()}}}
				case doc.form != nil:
					result = validation.LintForm(*doc.form, fields.Has, rules)
				default:
					result = validation.LintPage(*doc.page, pages.Has)
				}
				results[path] = result
				if !result.Valid {
					failed = true
				}
				if asJSON {
					continue
				}
				if result.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
					continue
				}
				for _, issue := range result.Issues {
					location := issue.Path
					if issue.Field != "" {
						location = issue.Field
					}
					if location != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s\n", path, location, issue.Message)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, issue.Message)
					}
				}
			}

			if asJSON {
				payload, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			}
			if failed {
				return errLintFailed
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print results as JSON")
	return cmd
}
