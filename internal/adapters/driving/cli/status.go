package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active pipeline tier",
	Long: `Runs bootstrap and reports the tier it settled on, each state
transition it took and why the better tiers were rejected.`,
	Args:        cobra.NoArgs,
	Annotations: needs(needsApp),
	RunE:        runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Tier        string             `json:"tier"`
	Description string             `json:"description"`
	Records     int                `json:"records"`
	Transitions []transitionOutput `json:"transitions"`
	Warnings    []string           `json:"warnings"`
}

type transitionOutput struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Tier   string `json:"tier,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if pipelineStatus == nil {
		return errors.New("pipeline status not configured")
	}

	records, err := pipelineStatus.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting records: %w", err)
	}

	out := statusOutput{
		Tier:        pipelineStatus.Tier().String(),
		Description: pipelineStatus.Tier().Description(),
		Records:     records,
		Transitions: []transitionOutput{},
		Warnings:    pipelineStatus.Warnings(),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	for _, t := range pipelineStatus.Transitions() {
		out.Transitions = append(out.Transitions, transitionOutput{
			From:   string(t.From),
			To:     string(t.To),
			Tier:   string(t.Tier),
			Reason: t.Reason,
		})
	}

	if statusJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Tier: %s\n", out.Description)
	cmd.Printf("Records: %d\n", out.Records)
	cmd.Println()
	cmd.Println("Bootstrap:")
	for _, t := range out.Transitions {
		line := fmt.Sprintf("  %s -> %s", t.From, t.To)
		if t.Tier != "" {
			line += fmt.Sprintf(" [%s]", t.Tier)
		}
		if t.Reason != "" {
			line += ": " + t.Reason
		}
		cmd.Println(line)
	}
	if len(out.Warnings) > 0 {
		cmd.Println()
		cmd.Println("Warnings:")
		for _, w := range out.Warnings {
			cmd.Printf("  - %s\n", w)
		}
	}
	return nil
}
