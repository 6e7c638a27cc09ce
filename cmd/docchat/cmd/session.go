package cmd

import (
	"fmt"

	"github.com/entrepeneur4lyf/docchat/internal/app"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			out := cmd.OutOrStdout()
			st := a.Coordinator.State()
			if !st.HasSession() {
				fmt.Fprintln(out, "no session")
				fmt.Fprintln(out, st.Hint())
				return nil
			}
			fmt.Fprintf(out, "session: %s\n", st.SessionID)
			fmt.Fprintf(out, "storage: %s\n", a.Config.Storage.Driver)
			fmt.Fprintln(out, st.Status)
			return nil
		})
	},
}
