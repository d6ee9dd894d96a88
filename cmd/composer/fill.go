package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-composer/internal/config"
	"github.com/goliatone/go-composer/pkg/forms"
	"github.com/goliatone/go-composer/pkg/submit"
	"github.com/goliatone/go-composer/pkg/tui"
)

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <form-file>",
		Short: "Fill a form on the terminal and submit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
				cfg.Submit.Endpoint = endpoint
			}
			return runFill(cmd, cfg, args[0], tui.NewSurveyDriver())
		},
	}
	cmd.Flags().String("endpoint", "", "Submit to this URL instead of printing the values")
	return cmd
}

func runFill(cmd *cobra.Command, cfg config.Config, path string, driver tui.PromptDriver) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if doc.form == nil {
		return fmt.Errorf("%s is a page, not a form", path)
	}

	compiler, err := forms.NewCompiler(nil, forms.WithLogger(logger), forms.WithHoneypotName(cfg.Forms.Honeypot))
	if err != nil {
		return err
	}
	form, err := compiler.CompileForm(*doc.form)
	if err != nil {
		return err
	}
	defer form.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := tui.NewFiller(driver).Fill(ctx, form); err != nil {
		return err
	}

	handler := submit.Handler(submit.HandlerFunc(func(_ context.Context, ev *submit.Event) error {
		payload, err := json.MarshalIndent(ev.Values, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return err
	}))
	if cfg.Submit.Endpoint != "" {
		handler = submit.HTTPTransport{Client: &http.Client{Timeout: cfg.Submit.Timeout}}
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	gate, err := submit.NewGate(form, handler,
		submit.WithPolicy(policy),
		submit.WithLogger(logger),
		submit.WithTrapDelay(cfg.Submit.TrapDelay, cfg.Submit.TrapCeiling),
	)
	if err != nil {
		return err
	}

	ev := &submit.Event{Method: form.Method(), Action: cfg.Submit.Endpoint}
	result, err := gate.Submit(ctx, ev)
	if err != nil {
		return err
	}
	if !result.Submitted() {
		return fmt.Errorf("form is invalid: %v", result.Invalid)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Submitted.")
	return nil
}
