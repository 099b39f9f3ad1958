package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openhome-school/backend/internal/events"
	"github.com/openhome-school/backend/internal/keywords"
	"github.com/openhome-school/backend/internal/models"
)

// EventCommands returns the event management commands
func EventCommands(env *Env) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Timeline event management",
		Long: `Timeline event management.

Available commands:
  import            - Import events from a YAML file
  suggest-keywords  - Fill in keywords for events that have none`,
	}

	eventsCmd.AddCommand(importCmd(env))
	eventsCmd.AddCommand(suggestKeywordsCmd(env))
	return eventsCmd
}

func importCmd(env *Env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import events from a YAML file",
		Long: `Import events from a YAML file with a top-level "events" list.
Every event is validated first; nothing is written if any event is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			parsed, err := events.DecodeYAML(f)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d events are valid; nothing written\n", len(parsed))
				return nil
			}

			db, err := env.DB(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := events.NewStore(db).CreateEvents(cmd.Context(), parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d events (ids %d-%d)\n", len(ids), ids[0], ids[len(ids)-1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without writing")
	return cmd
}

// keywordStore is the slice of the record store keyword suggestion needs.
type keywordStore interface {
	EventsMissingKeywords(ctx context.Context, limit int) ([]models.Event, error)
	UpdateKeywords(ctx context.Context, id int64, keywords []string) error
}

func suggestKeywordsCmd(env *Env) *cobra.Command {
	var (
		limit  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "suggest-keywords",
		Short: "Fill in keywords for events that have none",
		Long: `Ask the configured language model (llm.provider) for keywords for every
event without any, and store them. Events without keywords only match the
keyword-similar pool through capitalised words in their names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := keywords.NewClient(env.Config.LLM, env.Logger)
			if err != nil {
				return err
			}
			db, err := env.DB(cmd.Context())
			if err != nil {
				return err
			}
			return suggestKeywords(cmd, events.NewStore(db), keywords.NewSuggester(client, env.Logger), limit, dryRun)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events to process")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print suggestions without storing them")
	return cmd
}

func suggestKeywords(cmd *cobra.Command, store keywordStore, suggester *keywords.Suggester, limit int, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	pending, err := store.EventsMissingKeywords(ctx, limit)
	if err != nil {
		return err
	}

	failed := 0
	for _, e := range pending {
		kws, err := suggester.Suggest(ctx, e)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%d\t%s\tFAILED: %v\n", e.ID, e.Name, err)
			continue
		}
		if !dryRun {
			if err := store.UpdateKeywords(ctx, e.ID, kws); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", e.ID, e.Name, strings.Join(kws, ", "))
	}

	fmt.Fprintf(out, "%d events processed, %d failed\n", len(pending), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d suggestions failed", failed, len(pending))
	}
	return nil
}
