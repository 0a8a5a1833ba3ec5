package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/eduverse-backend/internal/app"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Inspect the project curriculum used by Edura",
}

var curriculumValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load every curriculum file and report what would be served",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = app.LoadConfig(log).CurriculumDir
		}
		store, err := curriculum.Open(dir, log)
		if err != nil {
			return err
		}
		stats := store.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d projects, %d tasks, %d steps\n", dir, stats.TotalProjects, stats.TotalTasks, stats.TotalSteps)
		for _, p := range store.Summaries() {
			fmt.Fprintf(out, "  %s\t%s\t%s\n", p.ProjectID, p.Difficulty, p.ProjectName)
		}
		return nil
	},
}

func init() {
	curriculumValidateCmd.Flags().String("dir", "", "curriculum directory (defaults to CURRICULUM_DIR)")
	curriculumCmd.AddCommand(curriculumValidateCmd)
}
