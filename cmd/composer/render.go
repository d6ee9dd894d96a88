package main

import (
	"github.com/spf13/cobra"

	composer "github.com/goliatone/go-composer"
	"github.com/goliatone/go-composer/pkg/tree"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <schema-file>",
		Short: "Render a page or form schema to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			edit, _ := cmd.Flags().GetBool("edit")
			selected, _ := cmd.Flags().GetString("selected")
			output, _ := cmd.Flags().GetString("output")

			options := []composer.Option{
				composer.WithLogger(logger),
				composer.WithHoneypotName(cfg.Forms.Honeypot),
				composer.WithTemplatesDir(cfg.TemplatesDir),
			}
			var html string
			if doc.form != nil {
				html, err = composer.RenderForm(*doc.form, composer.FormRenderOptions{}, options...)
			} else {
				html, err = composer.RenderPage(*doc.page, composer.PageOptions{
					Edit:       edit,
					Selected:   tree.Path(selected),
					Generation: 1,
				}, options...)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, []byte(html+"\n"))
		},
	}
	cmd.Flags().Bool("edit", false, "Render page edit affordances")
	cmd.Flags().String("selected", "", "Path of the selected page node, e.g. root[0]")
	cmd.Flags().StringP("output", "o", "", "Output file (stdout if empty)")
	return cmd
}
