package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coverline/internal/client"
	"coverline/internal/config"
	"coverline/internal/logger"
	"coverline/internal/poller"
)

var extractWait bool

func init() {
	extractCmd.Flags().BoolVar(&extractWait, "wait", false, "poll until the extraction finishes")
}

var extractCmd = &cobra.Command{
	Use:   "extract <document-id>",
	Short: "Start extracting a document",
	Long: `Start extracting a document. With --wait, poll its status until it
completes, fails, or the attempt budget runs out.

Examples:
  coverctl extract 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed --wait`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var statusCmd = &cobra.Command{
	Use:   "status <document-id>",
	Short: "Show the processing status of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var watchCmd = &cobra.Command{
	Use:   "watch <document-id>",
	Short: "Poll a document until it reaches a terminal status",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

// settings resolves flags over environment configuration.
type settings struct {
	baseURL string
	secret  string
	poll    poller.Config
}

func resolveSettings() (*settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	s := &settings{
		baseURL: cfg.Poll.BaseURL,
		secret:  cfg.Auth.SharedSecret,
		poll:    poller.Config{Interval: cfg.Poll.Interval(), MaxAttempts: cfg.Poll.MaxAttempts},
	}
	if serverURL != "" {
		s.baseURL = serverURL
	}
	if secret != "" {
		s.secret = secret
	}
	if intervalMs > 0 {
		s.poll.Interval = time.Duration(intervalMs) * time.Millisecond
	}
	if maxAttempts > 0 {
		s.poll.MaxAttempts = maxAttempts
	}
	return s, nil
}

func newLogger() *zap.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(config.LogConfig{Level: level, Format: "console"})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func parseDocumentID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document ID %q", arg)
	}
	return id, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	docID, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	c := client.New(s.baseURL, s.secret, 0)
	if err := c.Extract(cmd.Context(), docID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Extraction started for %s\n", docID)

	if !extractWait {
		return nil
	}
	return watch(cmd, c, docID, s.poll)
}

func runStatus(cmd *cobra.Command, args []string) error {
	docID, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}
	s, err := resolveSettings()
	if err != nil {
		return err
	}

	snap, err := client.New(s.baseURL, s.secret, 0).GetStatus(cmd.Context(), docID)
	if err != nil {
		return err
	}
	printSnapshot(cmd, snap)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	docID, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}
	s, err := resolveSettings()
	if err != nil {
		return err
	}
	return watch(cmd, client.New(s.baseURL, s.secret, 0), docID, s.poll)
}

func printSnapshot(cmd *cobra.Command, snap *poller.StatusSnapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "document:   %s\n", snap.DocumentID)
	fmt.Fprintf(out, "status:     %s\n", snap.Status)
	if snap.OverallConfidence != nil {
		fmt.Fprintf(out, "confidence: %.2f\n", *snap.OverallConfidence)
	}
	if snap.ErrorMessage != nil {
		fmt.Fprintf(out, "error:      %s\n", *snap.ErrorMessage)
	}
}

var errTimedOut = errors.New("timed out waiting for extraction")

// watch polls docID until a terminal callback fires or the process is interrupted.
func watch(cmd *cobra.Command, source poller.StatusSource, docID uuid.UUID, cfg poller.Config) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	result := make(chan error, 1)
	coord := poller.New(source, cfg, poller.Callbacks{
		OnComplete: func(uuid.UUID) {
			fmt.Fprintln(cmd.OutOrStdout(), "Extraction completed")
			result <- nil
		},
		OnFailed: func(_ uuid.UUID, reason string) {
			result <- fmt.Errorf("extraction failed: %s", reason)
		},
		OnTimeout: func(uuid.UUID) {
			result <- errTimedOut
		},
	}, log)
	defer coord.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (every %s, up to %d attempts)\n", docID, cfg.Interval, cfg.MaxAttempts)
	coord.StartPolling(docID)

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return errors.New("interrupted")
	}
}
