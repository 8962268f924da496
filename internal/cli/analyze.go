package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"applytrack/internal/common"
	"applytrack/internal/session"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score and optimize a resume for a job and create the application",
	Long: `Run the full analysis for one job and one resume, strictly in sequence:

1. compute the ATS score of the resume for the job
2. optimize the resume for the job
3. create the application

The job is an existing job description (--job), a posting file (--job-file)
or a posting URL (--job-url). The resume is an existing resume (--resume) or
a document to upload (--resume-file). A cover letter may be uploaded first
with --cover-letter. The run stops at the first failed step.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig

	analyzeJobID           string
	analyzeJobFile         string
	analyzeJobURL          string
	analyzeResumeID        string
	analyzeResumeFile      string
	analyzeCoverLetterFile string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJobID, "job", "", "Id of an analyzed job description")
	analyzeCmd.Flags().StringVar(&analyzeJobFile, "job-file", "", "Job posting text file to analyze first")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "Job posting URL to analyze first")
	analyzeCmd.Flags().StringVar(&analyzeResumeID, "resume", "", "Id of an uploaded resume")
	analyzeCmd.Flags().StringVar(&analyzeResumeFile, "resume-file", "", "Resume document to upload first")
	analyzeCmd.Flags().StringVar(&analyzeCoverLetterFile, "cover-letter", "", "Cover letter to upload first")

	analyzeCmd.MarkFlagsOneRequired("job", "job-file", "job-url")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-file", "job-url")
	analyzeCmd.MarkFlagsOneRequired("resume", "resume-file")
	analyzeCmd.MarkFlagsMutuallyExclusive("resume", "resume-file")

	addOutputFlags(analyzeCmd, &analyzeConfig)
}

// analyzeInputs holds the files read before any request is sent
type analyzeInputs struct {
	jobText     string
	resume      []byte
	coverLetter []byte
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize)

	// Read every local file up front so a bad path fails before the backend is touched
	var in analyzeInputs
	var err error
	if analyzeJobFile != "" {
		if in.jobText, err = fp.ReadText(analyzeJobFile); err != nil {
			return err
		}
	}
	if analyzeResumeFile != "" {
		if in.resume, err = fp.ReadDocument(analyzeResumeFile); err != nil {
			return err
		}
	}
	if analyzeCoverLetterFile != "" {
		if in.coverLetter, err = fp.ReadDocument(analyzeCoverLetterFile); err != nil {
			return err
		}
	}

	sess := commandSession(cmd)
	return runWithOutput(cmd, analyzeConfig, "analyze", func(ctx context.Context) (*session.AnalysisResult, error) {
		if err := prepareAnalysis(ctx, sess, in); err != nil {
			return nil, err
		}

		snap := sess.Store().Snapshot()
		logger.Info("Starting analysis",
			"job_description_id", snap.CurrentJobDescription.ID,
			"resume_id", snap.CurrentResume.ID)
		return sess.RunAnalysis(ctx)
	})
}

// prepareAnalysis makes the requested job, resume and cover letter current
func prepareAnalysis(ctx context.Context, sess *session.Session, in analyzeInputs) error {
	var err error
	switch {
	case analyzeJobID != "":
		_, err = sess.SelectJob(ctx, analyzeJobID)
	case analyzeJobURL != "":
		_, err = sess.AnalyzeJob(ctx, analyzeJobURL, true)
	default:
		_, err = sess.AnalyzeJob(ctx, in.jobText, false)
	}
	if err != nil {
		return fmt.Errorf("job description unavailable: %w", err)
	}

	if analyzeResumeID != "" {
		_, err = sess.SelectResume(ctx, analyzeResumeID)
	} else {
		_, err = sess.UploadResume(ctx, filepath.Base(analyzeResumeFile), bytes.NewReader(in.resume))
	}
	if err != nil {
		return fmt.Errorf("resume unavailable: %w", err)
	}

	if in.coverLetter != nil {
		if _, _, err := sess.UploadCoverLetter(ctx, filepath.Base(analyzeCoverLetterFile), in.coverLetter); err != nil {
			return fmt.Errorf("cover letter upload failed: %w", err)
		}
	}
	return nil
}
