package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainsift/pollwatch/internal/cli/output"
	"github.com/chainsift/pollwatch/internal/repository"
)

var pollsCmd = &cobra.Command{
	Use:   "polls",
	Short: "Indexed poll data",
	Long:  "Query poll accounts indexed from the voting program",
}

var pollsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all indexed polls",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		repo, err := repository.NewPostgresRepository(ctx, cfg.Database.Postgres.ConnString())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer repo.Close()

		polls, err := repo.ListPolls(ctx)
		if err != nil {
			return fmt.Errorf("failed to list polls: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(polls)
		}

		if len(polls) == 0 {
			output.Info("No polls indexed yet")
			return nil
		}

		table := output.NewTable("Poll ID", "Name", "Start", "End", "Candidates", "Updated At")
		for _, p := range polls {
			table.AddRow(
				fmt.Sprintf("%d", p.PollID),
				p.Name,
				fmt.Sprintf("%d", p.Start),
				fmt.Sprintf("%d", p.End),
				fmt.Sprintf("%d", p.CandidateCount),
				p.UpdatedAt.Format("2006-01-02 15:04"),
			)
		}
		table.Render()

		return nil
	},
}

func init() {
	pollsCmd.AddCommand(pollsListCmd)
	rootCmd.AddCommand(pollsCmd)
}
