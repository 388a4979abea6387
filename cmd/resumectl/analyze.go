package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resumefit/internal/datauri"
	"resumefit/internal/extract"
	"resumefit/internal/validation"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract entities from a resume and score it against a job description",
	RunE:  runAnalyze,
}

var (
	analyzeFile     string
	analyzeText     string
	analyzeJobFile  string
	analyzeJobInput string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Path to a PDF, DOCX or text resume")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Resume as plain text")
	analyzeCmd.Flags().StringVarP(&analyzeJobFile, "job-file", "j", "", "Path to a job description text file")
	analyzeCmd.Flags().StringVar(&analyzeJobInput, "job", "", "Job description text")
	analyzeCmd.MarkFlagsMutuallyExclusive("file", "text")
	analyzeCmd.MarkFlagsMutuallyExclusive("job-file", "job")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	form := validation.AnalyzeForm{ResumeText: analyzeText, JobDescription: analyzeJobInput}
	if analyzeJobFile != "" {
		data, err := os.ReadFile(analyzeJobFile)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		form.JobDescription = string(data)
	}
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return fmt.Errorf("read resume: %w", err)
		}
		mimeType := extract.NormalizeMIMEType("", analyzeFile, data)
		form.ResumeDataURI = datauri.Encode(mimeType, data)
		form.FileName = filepath.Base(analyzeFile)
	}

	ctx := cmd.Context()
	app, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.AnalysesService.Analyze(ctx, form)
	if err != nil {
		return describeError(err)
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
