package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resumefit/internal/validation"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Markdown resume from structured details",
	RunE:  runGenerate,
}

var (
	generateForm validation.GenerateForm
	generateJSON bool
)

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateForm.FullName, "name", "", "Full name")
	f.StringVar(&generateForm.ContactInfo, "contact", "", "Contact information")
	f.StringVar(&generateForm.Skills, "skills", "", "Skills")
	f.StringVar(&generateForm.Experience, "experience", "", "Work experience")
	f.StringVar(&generateForm.Education, "education", "", "Education")
	f.StringVar(&generateForm.TargetJobDescription, "job", "", "Optional target job description")
	f.StringVar(&generateForm.Tone, "tone", validation.ToneProfessional, "professional, creative or technical")
	f.BoolVar(&generateJSON, "json", false, "Print the full result as JSON instead of the Markdown text")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.GenerationsService.Generate(ctx, generateForm)
	if err != nil {
		return describeError(err)
	}
	if generateJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.ResumeText)
	return err
}
