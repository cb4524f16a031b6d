package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a natural-language question",
	Long: `Classifies the question and answers it from the connected database,
the ingested documents, or both.

Examples:
  hybridq query "How many employees do we have?"
  hybridq query "Average salary by department"
  hybridq query "Show me resumes with python skills"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result envelope as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	text := strings.Join(args, " ")
	res := queryService.Query(cmd.Context(), text)

	if queryJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if res.Failed() {
		return fmt.Errorf("query failed: %s", res.Error)
	}
	printQueryResult(cmd, res)
	return nil
}

func printQueryResult(cmd *cobra.Command, res *domain.QueryResult) {
	metrics := res.Metrics
	if metrics == nil {
		metrics = &domain.Metrics{}
	}
	meta := fmt.Sprintf("type=%s time=%.3fs", res.Type, metrics.Time)
	if metrics.CacheHit {
		meta += " (cached)"
	}
	cmd.Println(titleStyle.Render(res.Query))
	cmd.Println(mutedStyle.Render(meta))
	cmd.Println()

	results := res.Results
	if results == nil {
		results = &domain.QueryResults{}
	}
	if st := results.Structured; st != nil {
		cmd.Println(headerStyle.Render("Database"), mutedStyle.Render(st.SQL))
		printRows(cmd, st.Rows)
		cmd.Println()
	}

	if res.Type.WantsDocuments() && results.Errors[domain.ResultDocuments] == "" {
		cmd.Println(headerStyle.Render("Documents"))
		if len(results.Documents) == 0 {
			cmd.Println(mutedStyle.Render("  No matching documents."))
		}
		for i, h := range results.Documents {
			cmd.Printf("  [%d] %s %s\n", i+1, h.Source, mutedStyle.Render(fmt.Sprintf("(%.2f)", h.Score)))
			cmd.Printf("      %s\n", truncate(h.Text, 160))
		}
		cmd.Println()
	}

	for _, key := range []string{domain.ResultStructured, domain.ResultDocuments} {
		if msg, ok := results.Errors[key]; ok {
			cmd.Println(warningStyle.Render(fmt.Sprintf("%s unavailable: %s", key, msg)))
		}
	}
}

func printRows(cmd *cobra.Command, rows []map[string]any) {
	if len(rows) == 0 {
		cmd.Println(mutedStyle.Render("  No rows."))
		return
	}

	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			cells[i][j] = truncate(formatValue(row[c]), 40)
		}
	}
	cmd.Print(renderTable(cols, cells))
}
