package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusware/advisor/internal/core/domain"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Saved conversation commands",
	Long:  `Commands for listing, replaying and deleting saved conversations.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations, newest first",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a saved conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}

	summaries, err := sessionStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No saved sessions.")
		return nil
	}

	for _, s := range summaries {
		cmd.Printf("  %s  %s  %s\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), s.Title)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}

	sess, err := sessionStore.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading session %s: %w", args[0], err)
	}

	cmd.Printf("%s (%s)\n\n", sess.Title, sess.UpdatedAt.Format("2006-01-02 15:04"))
	for _, turn := range sess.Turns {
		speaker := "You"
		if turn.Role == domain.RoleAssistant {
			speaker = "Advisor"
		}
		cmd.Printf("%s: %s\n\n", speaker, turn.Content)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}

	if err := sessionStore.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting session %s: %w", args[0], err)
	}
	cmd.Printf("Deleted session %s.\n", args[0])
	return nil
}
