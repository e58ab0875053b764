package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"BrochureGen/internal/app"
	"BrochureGen/internal/config"
	"BrochureGen/internal/domain"
	"BrochureGen/internal/logging"
	"BrochureGen/internal/ports"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var company string
	var siteURL string
	var toneName string

	cmd := &cobra.Command{
		Use:          "brochuregen",
		Short:        "Generate a company brochure from its website with Gemini",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tone, err := domain.ParseTone(toneName)
			if err != nil {
				return err
			}

			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			sink := &spinnerSink{sp: sp}

			application, err := app.New(cfg, sink, logger)
			if err != nil {
				return err
			}

			req := domain.BrochureRequest{
				CompanyName: company,
				URL:         siteURL,
				Tone:        tone,
			}

			sp.Start()
			stream, err := application.Pipeline().GenerateBrochure(cmd.Context(), req)
			sp.Stop()
			if err != nil {
				return err
			}

			for {
				frag, ok := stream.Next()
				if !ok {
					break
				}
				fmt.Fprint(os.Stdout, frag)
			}
			fmt.Fprintln(os.Stdout)

			if err := stream.Err(); err != nil {
				return fmt.Errorf("brochure incomplete: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&company, "company", "c", "", "Company name (required)")
	cmd.Flags().StringVarP(&siteURL, "url", "u", "", "Company website URL (required)")
	cmd.Flags().StringVarP(&toneName, "tone", "t", "professional", "Brochure tone: professional|humorous|inspirational|technical")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// spinnerSink renders pipeline progress on the spinner while it runs and
// falls back to plain stderr lines once it has stopped.
type spinnerSink struct {
	sp *spinner.Spinner
}

var _ ports.StatusSink = (*spinnerSink)(nil)

func (s *spinnerSink) Info(msg string) {
	if s.sp != nil && s.sp.Active() {
		s.sp.Suffix = " " + msg
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func (s *spinnerSink) Warn(msg string) {
	fmt.Fprintln(os.Stderr, "warning: "+msg)
}

func (s *spinnerSink) Error(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
}
