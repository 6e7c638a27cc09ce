package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/docchat/internal/app"
	"github.com/entrepeneur4lyf/docchat/internal/upload"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and start a new session",
	Long: fmt.Sprintf(`Upload a document to the service. On success the issued session
replaces the stored one and later questions are asked about this document.

Accepted types: %s`, strings.Join(upload.AcceptedExtensions(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			coord := a.Coordinator

			if err := coord.SelectPath(args[0]); err != nil {
				if errors.Is(err, upload.ErrUnsupportedType) {
					return fmt.Errorf("%s is not an accepted document (%s)",
						args[0], strings.Join(upload.AcceptedExtensions(), ", "))
				}
				return err
			}

			f, _ := coord.Candidate()
			fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %s (%s)...\n", f.Name, f.SizeKB())

			id, err := coord.SubmitUpload(cmd.Context())
			if err != nil {
				if msg := coord.State().Error; msg != "" {
					return errors.New(msg)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, coord.State().Status)
			fmt.Fprintf(out, "session: %s\n", id)
			return nil
		})
	},
}
