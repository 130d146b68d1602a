package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pickup-ledger/server/internal/model"
	"pickup-ledger/server/internal/pickup"
	"pickup-ledger/server/internal/roster"
)

var (
	studentsPath string
	withSummary  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a pickup log and print the sessions as JSON",
	Long: `Reads a pasted pickup log from a file (or stdin with "-" or no argument)
and prints the parsed pull sessions as JSON.

Example:
  pickupledger parse --students server/configs/students.json log.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		students, err := roster.Load(studentsPath)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			in = f
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		return writeParsed(cmd.OutOrStdout(), string(raw), students, withSummary)
	},
}

func init() {
	parseCmd.Flags().StringVar(&studentsPath, "students", "server/configs/students.json", "student roster (JSON or YAML)")
	parseCmd.Flags().BoolVar(&withSummary, "summary", false, "include a summary of the parsed sessions")
}

func writeParsed(w io.Writer, raw string, students []model.StudentName, summary bool) error {
	sessions := pickup.Parse(raw, students)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if !summary {
		return enc.Encode(sessions)
	}
	return enc.Encode(struct {
		Sessions []model.PullSession `json:"sessions"`
		Summary  model.Summary       `json:"summary"`
	}{sessions, pickup.Summarize(sessions)})
}
