package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui"
	"github.com/custodia-labs/educhat/internal/core/domain"
)

var (
	chatSubject string
	chatPlain   bool
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Chat with the tutor interactively",
	Long: `Opens the terminal chat. On a terminal this is a full-screen interface
with a scrolling transcript, subject browsing and pipeline status.

When stdin is not a terminal, or with --plain, questions are read one per
line and answered in turn. Type /subject <name> to filter by subject,
/subject to clear the filter, and exit or quit to leave.`,
	Args:        cobra.NoArgs,
	Annotations: needs(needsApp),
	RunE:        runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSubject, "subject", "s", "", "restrict retrieval to a subject (plain mode)")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-by-line chat without the full-screen interface")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if tutorService == nil {
		return errors.New("tutor service not configured")
	}

	if !chatPlain && stdinIsTerminal(cmd) {
		app, err := tui.NewApp(&tui.Ports{Tutor: tutorService, Status: pipelineStatus})
		if err != nil {
			return fmt.Errorf("failed to create TUI: %w", err)
		}
		if err := app.WithContext(cmd.Context()).Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	}

	return chatLoop(cmd, cmd.InOrStdin(), chatSubject)
}

// chatLoop answers one question per input line until EOF or exit.
func chatLoop(cmd *cobra.Command, in io.Reader, subject string) error {
	cmd.Printf("educhat (%s tier). Ask a question, or type exit to leave.\n", tutorService.Tier())

	scanner := bufio.NewScanner(in)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == "/subject" || strings.HasPrefix(line, "/subject "):
			subject = strings.TrimSpace(strings.TrimPrefix(line, "/subject"))
			if subject == "" {
				cmd.Println("Searching all subjects.")
			} else {
				cmd.Printf("Filtering by %s.\n", subject)
			}
			continue
		}

		result, err := tutorService.Ask(cmd.Context(), line, domain.AskOptions{Subject: subject})
		if err != nil {
			if cmd.Context().Err() != nil {
				return nil
			}
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		outputAnswer(cmd, result)
		cmd.Println()
	}
}

func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
