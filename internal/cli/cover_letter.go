package cli

import (
	"context"
	"path/filepath"

	"applytrack/internal/common"
	"applytrack/internal/types"

	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Upload and fetch cover letters",
}

var coverLetterUploadCmd = &cobra.Command{
	Use:   "upload <cover-letter-file>",
	Short: "Upload a cover letter",
	Long: `Upload a cover letter to the backend. When the backend cannot take it the
letter is kept locally, built from the file text, and a warning is logged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}

		sess := commandSession(cmd)
		return runWithOutput(cmd, coverLetterUploadConfig, "cover-letter upload", func(ctx context.Context) (types.CoverLetter, error) {
			letter, _, err := sess.UploadCoverLetter(ctx, filepath.Base(args[0]), data)
			return letter, err
		})
	},
}

var coverLetterGetCmd = &cobra.Command{
	Use:   "get <cover-letter-id>",
	Short: "Fetch a cover letter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := commandSession(cmd)
		return runWithOutput(cmd, coverLetterGetConfig, "cover-letter get", func(ctx context.Context) (types.CoverLetter, error) {
			return sess.Services().CoverLetters.Get(ctx, args[0])
		})
	},
}

var (
	coverLetterUploadConfig common.CommandConfig
	coverLetterGetConfig    common.CommandConfig
)

func init() {
	coverLetterCmd.AddCommand(addOutputFlags(coverLetterUploadCmd, &coverLetterUploadConfig))
	coverLetterCmd.AddCommand(addOutputFlags(coverLetterGetCmd, &coverLetterGetConfig))
}
