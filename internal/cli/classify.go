package cli

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/dwizi/esg-advisor/internal/classify"
	"github.com/dwizi/esg-advisor/internal/knowledge"
	"github.com/dwizi/esg-advisor/internal/reply"
)

func newClassifyCommand() *cobra.Command {
	var showPrompt bool
	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Show how a message is routed without calling the backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			tables, err := knowledge.Default()
			if err != nil {
				return err
			}
			classifier := classify.New(tables)
			styles := newTheme()

			intent := classifier.RecognizeIntent(message)
			rows := []string{
				styles.row("message", styles.value, message),
				styles.row("intent", styles.accent, string(intent)),
			}
			if intent == classify.IntentChat {
				rows = append(rows, styles.row("reply", styles.subtle, "canned greeting"))
				fmt.Fprintln(cmd.OutOrStdout(), styles.card("Route", rows...))
				return nil
			}

			tag := classifier.ClassifyQuestion(message)
			followup := classifier.NeedsFollowup(message)
			recall := knowledge.ContainsAny(message, tables.PastTerms)
			rows = append(rows,
				styles.row("domain", styles.accent, string(tag)),
				styles.row("follow-up", flagStyle(styles, followup), strconv.FormatBool(followup)),
				styles.row("summaries", flagStyle(styles, recall), strconv.FormatBool(recall)),
			)
			fmt.Fprintln(cmd.OutOrStdout(), styles.card("Route", rows...))

			if showPrompt {
				prompt := reply.ComposeSystemPrompt(reply.PromptParts{
					Knowledge:     tables.BuildKnowledgePrompt(tag),
					NeedsFollowup: followup,
				})
				fmt.Fprintln(cmd.OutOrStdout(), styles.subtle.Render("system prompt:"))
				fmt.Fprintln(cmd.OutOrStdout(), prompt)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPrompt, "prompt", false, "also print the composed system prompt")
	return cmd
}

func flagStyle(styles theme, on bool) lipgloss.Style {
	if on {
		return styles.warn
	}
	return styles.value
}
