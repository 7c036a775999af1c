package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
	"github.com/myrtlewealth/blueprint/internal/questionnaire"
	"github.com/myrtlewealth/blueprint/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a questionnaire from a JSON answers file",
	Long: `Score a questionnaire offline and print the classification and narrative.

The answers file is a JSON object keyed by question id, with single-choice
answers as strings and multi-select answers as arrays:

  {"Q1": "C", "Q2": ["STG2", "STG3"], ..., "Q14": "B"}

Examples:
  score --answers answers.json
  score --answers answers.json --rule-set legacy
  score --answers answers.json --rule-set-file rules.yaml --json`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("answers", "", "path to a JSON answers file (- for stdin)")
	f.String("rule-set", "", "built-in rule set name (overrides config)")
	f.String("rule-set-file", "", "YAML rule set file (overrides config and --rule-set)")
	f.Bool("json", false, "print the result as JSON")
	_ = scoreCmd.MarkFlagRequired("answers")
	rootCmd.AddCommand(scoreCmd)
}

// scoreOutput is the --json shape.
type scoreOutput struct {
	Result    scorer.Result       `json:"result"`
	Narrative narrative.Narrative `json:"narrative"`
	Text      string              `json:"text"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("answers")
	ruleSet, _ := cmd.Flags().GetString("rule-set")
	ruleSetFile, _ := cmd.Flags().GetString("rule-set-file")
	asJSON, _ := cmd.Flags().GetBool("json")

	answers, err := readAnswers(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := questionnaire.Validate(answers); err != nil {
		return err
	}

	sc, err := newScorer(cfg.Scoring, ruleSet, ruleSetFile)
	if err != nil {
		return err
	}
	res := sc.Score(answers)
	n := narrative.Generate(res, narrative.BuildContext(answers, sc))

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scoreOutput{Result: res, Narrative: n, Text: n.Text()})
	}
	formatScore(out, res)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, n.Text())
	return nil
}

func readAnswers(path string, stdin io.Reader) (model.AnswerSet, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read answers %s", path)
	}
	var answers model.AnswerSet
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, eris.Wrapf(err, "decode answers %s", path)
	}
	return answers, nil
}

// formatScore writes the classification summary to w.
func formatScore(out io.Writer, r scorer.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Rule set:\t%s\n", r.RuleSet)
	_, _ = fmt.Fprintf(w, "Net worth:\t%s\n", narrative.Naira(r.NetWorth))
	_, _ = fmt.Fprintf(w, "Band:\t%s\n", r.Band.Key())
	_, _ = fmt.Fprintf(w, "Risk score:\t%d/%d\n", r.Risk.Score, r.Risk.Max)
	_, _ = fmt.Fprintf(w, "Risk profile:\t%s\n", r.Risk.Profile)
	_, _ = fmt.Fprintf(w, "Persona:\t%s\n", r.Persona)
	_, _ = fmt.Fprintf(w, "Portfolio:\t%s\n", r.Portfolio.Summary())
	_ = w.Flush()
}
