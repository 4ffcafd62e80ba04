package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
)

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeScoredTable(out io.Writer, tasks []priority.ScoredTask) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tSCORE\tTITLE\tDUE\tURG\tIMP\tEFF\tDEP")
	for i, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n",
			i+1,
			optionalID(t.ID),
			t.Score,
			truncate(t.Title, 40),
			optionalDate(t.DueDate),
			t.Breakdown.Urgency,
			t.Breakdown.Importance,
			t.Breakdown.Effort,
			t.Breakdown.Dependency,
		)
	}
	return w.Flush()
}

func writeStrategiesTable(out io.Writer, strategies []queries.StrategyDTO) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURGENCY\tIMPORTANCE\tEFFORT\tDEPS\tDESCRIPTION")
	for _, s := range strategies {
		name := s.Name
		if s.Default {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			name, s.Weights.Urgency, s.Weights.Importance, s.Weights.Effort, s.Weights.Deps, s.Description)
	}
	return w.Flush()
}

func writeRunsTable(out io.Writer, runs []queries.RunDTO) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tSTRATEGY\tTASKS\tRESULT")
	for _, r := range runs {
		result := "top " + priority.FormatPath(r.TopTaskIDs)
		if r.CycleDetected {
			result = "cycle " + priority.FormatPath(r.CyclePath)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID.String()[:8],
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Strategy,
			r.TaskCount,
			result,
		)
	}
	return w.Flush()
}

func optionalID(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}

func optionalDate(d *priority.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
