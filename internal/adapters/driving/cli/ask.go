package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/educhat/internal/core/domain"
)

var (
	askSubject string
	askTopK    int
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the tutor a question",
	Long: `Answers a question from the ingested documents.
With --subject only chunks tagged with that subject are considered.`,
	Args:        cobra.ExactArgs(1),
	Annotations: needs(needsApp),
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSubject, "subject", "s", "", "restrict retrieval to a subject")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON shape of an answer.
type askOutput struct {
	Question  string           `json:"question"`
	Tier      string           `json:"tier"`
	Answer    []string         `json:"answer"`
	Documents []documentOutput `json:"documents"`
}

type documentOutput struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Score   float64        `json:"score"`
	Meta    map[string]any `json:"meta"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if tutorService == nil {
		return errors.New("tutor service not configured")
	}

	result, err := tutorService.Ask(cmd.Context(), args[0], domain.AskOptions{
		Subject: askSubject,
		TopK:    askTopK,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	outputAnswer(cmd, result)
	return nil
}

func outputAskJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	out := askOutput{
		Question:  result.Query,
		Tier:      tutorService.Tier().String(),
		Answer:    result.Answer,
		Documents: make([]documentOutput, 0, len(result.Documents)),
	}
	for _, d := range result.Documents {
		out.Documents = append(out.Documents, documentOutput{
			ID:      d.ID,
			Content: d.Content,
			Score:   d.Score,
			Meta:    d.Meta,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, result *domain.QueryResult) {
	for i, a := range result.Answer {
		if i > 0 {
			cmd.Println()
		}
		cmd.Println(a)
	}

	if len(result.Documents) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i := range result.Documents {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, list.SourceLabel(result.Documents[i].IndexedRecord), result.Documents[i].Score)
	}
}
