package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
	"github.com/myrtlewealth/blueprint/internal/store"
	"github.com/myrtlewealth/blueprint/internal/submission"
)

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Inspect stored questionnaire submissions",
	Long:  "Commands for listing, viewing, and summarizing stored submissions.",
}

// -- submissions list --

var submissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		persona, _ := cmd.Flags().GetString("persona")
		profile, _ := cmd.Flags().GetString("risk-profile")
		email, _ := cmd.Flags().GetString("email")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		subs, err := st.ListSubmissions(ctx, store.SubmissionFilter{
			Persona:     persona,
			RiskProfile: profile,
			Email:       email,
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			return eris.Wrap(err, "submissions list")
		}

		if len(subs) == 0 {
			fmt.Fprintln(os.Stderr, "No submissions found.")
			return nil
		}

		formatSubmissionsList(cmd.OutOrStdout(), subs)
		return nil
	},
}

// -- submissions show --

var submissionsShowCmd = &cobra.Command{
	Use:   "show <submission-id>",
	Short: "Show full details of a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sub, err := st.GetSubmission(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "submissions show")
		}

		if text, _ := cmd.Flags().GetBool("narrative"); text {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), sub.Analysis.Narrative)
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sub)
	},
}

// -- submissions stats --

var submissionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		svc, st, err := openService(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := svc.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "submissions stats")
		}
		formatStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	submissionsListCmd.Flags().String("persona", "", "filter by persona")
	submissionsListCmd.Flags().String("risk-profile", "", "filter by risk profile")
	submissionsListCmd.Flags().String("email", "", "filter by client email")
	submissionsListCmd.Flags().Int("limit", 50, "max number of submissions to display")
	submissionsListCmd.Flags().Int("offset", 0, "number of submissions to skip")

	submissionsShowCmd.Flags().Bool("narrative", false, "print only the narrative text")

	submissionsCmd.AddCommand(submissionsListCmd)
	submissionsCmd.AddCommand(submissionsShowCmd)
	submissionsCmd.AddCommand(submissionsStatsCmd)
	rootCmd.AddCommand(submissionsCmd)
}

// formatSubmissionsList writes a tabular list of submissions to w.
func formatSubmissionsList(out io.Writer, subs []model.SubmissionSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tNET WORTH\tBAND\tRISK\tPERSONA\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t---------\t----\t----\t-------\t-------")

	for _, s := range subs {
		name := s.FullName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s (%d)\t%s\t%s\n",
			truncateID(s.ID),
			name,
			s.Email,
			narrative.Naira(s.NetWorth),
			s.NetWorthBand,
			s.RiskProfile,
			s.RiskScore,
			s.Persona,
			s.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatStats writes dashboard statistics to w.
func formatStats(out io.Writer, s *submission.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total submissions:\t%d\n", s.TotalSubmissions)
	_, _ = fmt.Fprintf(w, "Total net worth:\t%s\n", narrative.Naira(s.TotalNetWorth.IntPart()))
	_, _ = fmt.Fprintf(w, "Average net worth:\t%s\n", narrative.Naira(s.AverageNetWorth.Round(0).IntPart()))
	writeDistribution(w, "Personas", s.PersonaDistribution)
	writeDistribution(w, "Risk profiles", s.RiskProfileDistribution)
	_ = w.Flush()
}

func writeDistribution(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	_, _ = fmt.Fprintf(w, "%s:\t\n", title)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", k, counts[k])
	}
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
