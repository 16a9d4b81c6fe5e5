package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Change how a course appears in your overview",
	Long:  `Hide, restore or star a single course by its id.`,
}

var courseHideCmd = &cobra.Command{
	Use:   "hide [course-id]",
	Short: "Remove a course from view",
	Args:  cobra.ExactArgs(1),
	RunE: courseAction("Course %d removed from view", func(cmd *cobra.Command, s driving.CourseSearch, id int64) error {
		return s.Hide(cmd.Context(), id)
	}),
}

var courseShowCmd = &cobra.Command{
	Use:   "show [course-id]",
	Short: "Restore a course removed from view",
	Args:  cobra.ExactArgs(1),
	RunE: courseAction("Course %d restored to view", func(cmd *cobra.Command, s driving.CourseSearch, id int64) error {
		return s.Show(cmd.Context(), id)
	}),
}

var courseFavouriteCmd = &cobra.Command{
	Use:   "favourite [course-id]",
	Short: "Star a course",
	Args:  cobra.ExactArgs(1),
	RunE: courseAction("Course %d starred", func(cmd *cobra.Command, s driving.CourseSearch, id int64) error {
		return s.SetFavourite(cmd.Context(), id, true)
	}),
}

var courseUnfavouriteCmd = &cobra.Command{
	Use:   "unfavourite [course-id]",
	Short: "Unstar a course",
	Args:  cobra.ExactArgs(1),
	RunE: courseAction("Course %d unstarred", func(cmd *cobra.Command, s driving.CourseSearch, id int64) error {
		return s.SetFavourite(cmd.Context(), id, false)
	}),
}

func init() {
	courseCmd.AddCommand(courseHideCmd)
	courseCmd.AddCommand(courseShowCmd)
	courseCmd.AddCommand(courseFavouriteCmd)
	courseCmd.AddCommand(courseUnfavouriteCmd)
	rootCmd.AddCommand(courseCmd)
}

// courseAction runs fn against a fresh search session and prints done.
func courseAction(done string, fn func(*cobra.Command, driving.CourseSearch, int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseCourseID(args[0])
		if err != nil {
			return err
		}
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		search, terminal, err := openSearch(settings)
		if err != nil {
			return err
		}
		defer search.Close()

		if err := fn(cmd, search, id); err != nil {
			printNotifications(cmd, terminal)
			return fmt.Errorf("course %d: %w", id, err)
		}
		cmd.Printf(done+"\n", id)
		return nil
	}
}

func parseCourseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", s)
	}
	return id, nil
}
