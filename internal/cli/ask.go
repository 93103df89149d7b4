package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sharerapy/internal/rag"
	"sharerapy/internal/service"
)

var (
	askHistoryFile string
	askShowSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question about the indexed reports",
	Long: `Ask a question and stream an answer grounded in the indexed therapy reports.

Pass --history with a JSON file of prior turns to continue a conversation:
  [{"role": "user", "content": "..."}, {"role": "assistant", "content": "..."}]

Examples:
  sharerapy ask "Which reports mention sensory integration therapy?"
  sharerapy ask "And for adults?" --history chat.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askHistoryFile, "history", "", "JSON file with prior conversation turns")
	askCmd.Flags().BoolVar(&askShowSources, "sources", true, "list the reports the answer is grounded in")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return &service.ValidationError{Field: "query", Message: "is required"}
	}

	var history []rag.Turn
	if askHistoryFile != "" {
		f, err := os.Open(askHistoryFile)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer f.Close()
		if history, err = readHistory(f); err != nil {
			return err
		}
	}

	res := application.Engine.GenerateAnswer(cmd.Context(), query, history)
	return printAnswer(cmd.Context(), cmd.OutOrStdout(), res, askShowSources)
}

type historyFile struct {
	History []rag.Turn `json:"history" validate:"dive"`
}

// readHistory decodes a JSON array of turns, normalising roles.
func readHistory(r io.Reader) ([]rag.Turn, error) {
	var h historyFile
	if err := json.NewDecoder(r).Decode(&h.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	for i := range h.History {
		h.History[i].Role = rag.NormalizeRole(h.History[i].Role)
	}
	if err := service.Validate(h); err != nil {
		return nil, err
	}
	return h.History, nil
}

// printAnswer streams the answer deltas to w, then lists the sources.
func printAnswer(ctx context.Context, w io.Writer, res rag.Result, withSources bool) error {
	if !res.Success {
		return fmt.Errorf("%s failed: %s", res.FailedStage, res.Error)
	}
	defer res.Output.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delta, ok := <-res.Output.Deltas():
			if !ok {
				if err := res.Output.Err(); err != nil {
					fmt.Fprintln(w)
					return fmt.Errorf("answer stream: %w", err)
				}
				fmt.Fprintln(w)
				if withSources {
					printSources(w, res.Sources)
				}
				return nil
			}
			fmt.Fprint(w, delta)
		}
	}
}

func printSources(w io.Writer, sources []rag.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if seen[s.ReportID] {
			continue
		}
		seen[s.ReportID] = true
		title := "(report unavailable)"
		if s.Report != nil {
			title = s.Report.Title
		}
		fmt.Fprintf(w, "- %s [%s] similarity %.2f\n", title, s.ReportID, s.Similarity)
	}
}
