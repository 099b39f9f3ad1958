package commands

import (
	"github.com/spf13/cobra"

	"github.com/openhome-school/backend/internal/events"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/quiz"
)

// QuizCommands returns the question preview commands
func QuizCommands(env *Env) *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Preview generated quiz questions",
	}
	quizCmd.AddCommand(generateCmd(env))
	return quizCmd
}

func generateCmd(env *Env) *cobra.Command {
	var (
		count          int
		weekFrom       int
		weekTo         int
		yearFrom       int
		yearTo         int
		cycles         []int
		includePeoples bool
	)

	cmd := &cobra.Command{
		Use:   "generate [KIND]",
		Short: "Generate one question and print it as JSON",
		Long: `Generate one question of KIND (default history_sequence) with the
configured default criteria, adjusted by flags, and print it with its answer.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := quiz.KindHistorySequence
			if len(args) == 1 {
				k, err := quiz.ParseKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}

			var opts []models.CriteriaOption
			if cmd.Flags().Changed("count") {
				opts = append(opts, models.WithCount(count))
			}
			if cmd.Flags().Changed("week-from") || cmd.Flags().Changed("week-to") {
				opts = append(opts, models.WithWeeks(weekFrom, weekTo))
			}
			if cmd.Flags().Changed("year-from") || cmd.Flags().Changed("year-to") {
				opts = append(opts, models.WithYears(yearFrom, yearTo))
			}
			if len(cycles) > 0 {
				opts = append(opts, models.WithCycles(cycles...))
			}
			if includePeoples {
				opts = append(opts, models.WithPeopleGroups(true))
			}

			db, err := env.DB(cmd.Context())
			if err != nil {
				return err
			}
			svc := quiz.NewService(events.NewStore(db), env.Config.Quiz, env.Logger)

			q, err := svc.Generate(cmd.Context(), kind, opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", env.Config.Quiz.DefaultCount, "Number of options")
	cmd.Flags().IntVar(&weekFrom, "week-from", env.Config.Quiz.WeekFrom, "First cycle week (inclusive)")
	cmd.Flags().IntVar(&weekTo, "week-to", env.Config.Quiz.WeekTo, "Last cycle week (inclusive)")
	cmd.Flags().IntVar(&yearFrom, "year-from", -5000, "Earliest start year (negative = BC)")
	cmd.Flags().IntVar(&yearTo, "year-to", 3000, "Latest start year")
	cmd.Flags().IntSliceVar(&cycles, "cycles", nil, "Restrict to these cycles")
	cmd.Flags().BoolVar(&includePeoples, "people-groups", false, "Include people-group records")
	return cmd
}

func kindNames() []string {
	names := make([]string, len(quiz.Kinds))
	for i, k := range quiz.Kinds {
		names[i] = string(k)
	}
	return names
}
