package cli

import (
	"fmt"
	"io"
	"strings"

	"applytrack/internal/common"
	"applytrack/internal/errors"

	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Read and save the cover letter draft",
	Long: `The cover letter draft is kept on disk (drafts.path) so it survives between
runs. A running "applytrack serve" picks up changes made here.`,
}

var draftGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the saved cover letter draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLoggerFromContext(cmd.Context())

		content, saved, err := commandSession(cmd).LoadDraft()
		if err != nil {
			return err
		}
		if !saved {
			logger.Info("No cover letter draft saved")
			return nil
		}

		if draftOutputFile != "" {
			fp := common.NewFileProcessor(logger, 0)
			if err := fp.ValidateOutputFile(draftOutputFile); err != nil {
				return err
			}
			return fp.WriteFile(draftOutputFile, content)
		}
		if _, err := io.WriteString(cmd.OutOrStdout(), content); err != nil {
			return errors.NewIOError(errors.ErrCodeFileWriteFailed, "failed to write draft", err)
		}
		if !strings.HasSuffix(content, "\n") {
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

var draftSetCmd = &cobra.Command{
	Use:   "set [draft-file]",
	Short: "Save the cover letter draft from a file, --text or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		text := draftText
		switch {
		case len(args) == 1 && draftText != "":
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"provide either a draft file or --text", nil)
		case len(args) == 1:
			content, err := common.NewFileProcessor(logger, cfg.App.MaxFileSize).ReadText(args[0])
			if err != nil {
				return err
			}
			text = content
		case draftText == "":
			stdin := cmd.InOrStdin()
			if cfg.App.MaxFileSize > 0 {
				stdin = io.LimitReader(stdin, cfg.App.MaxFileSize+1)
			}
			data, err := io.ReadAll(stdin)
			if err != nil {
				return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read draft from stdin", err)
			}
			if cfg.App.MaxFileSize > 0 && int64(len(data)) > cfg.App.MaxFileSize {
				return errors.NewValidationError(errors.ErrCodeInvalidRequest, "draft is larger than app.maxFileSize", nil)
			}
			text = string(data)
		}

		sess := commandSession(cmd)
		if err := sess.SaveDraft(text); err != nil {
			return err
		}
		logger.Info("Cover letter draft saved", "path", sess.Drafts().Path(), "chars", len(text))
		return nil
	},
}

var (
	draftOutputFile string
	draftText       string
)

func init() {
	draftGetCmd.Flags().StringVarP(&draftOutputFile, "output", "o", "", "Output file path (default: stdout)")
	draftSetCmd.Flags().StringVar(&draftText, "text", "", "Draft text")

	draftCmd.AddCommand(draftGetCmd)
	draftCmd.AddCommand(draftSetCmd)
}
