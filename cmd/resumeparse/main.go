// Command resumeparse extracts structured fields from résumé documents,
// either once from the command line or as an HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "resumeparse",
	Short:         "Résumé section and field extractor",
	Long:          "resumeparse reads PDF, DOCX, Markdown, HTML and text résumés and extracts education, coursework, experience, internships, projects, skills and GPA.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
