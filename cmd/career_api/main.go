// Package main provides the entry point for the career path recommendation API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_api",
	Short: "Career Path Recommendation API",
	Long:  "Career Path recommends careers from a profile of skills, interests and experience, and generates learning paths and quizzes for them via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
