package output

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

var tableHeader = []string{"Mach#", "Last Failure", "Mach Cat", "Fail Type", "MLE(hours)", "RUL(%)", "State Prob."}

// WriteTable renders the ranked report as tab-separated text. Flagged observations follow
// the ranked rows under their own heading.
func WriteTable(w io.Writer, report models.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, strings.Join(tableHeader, "\t"))
	for _, row := range report.Rows {
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%.6f\t%.2f\t%.4f\n",
			row.MachineID,
			row.LastFailure.Format(utils.FailureTimestampLayout),
			row.MachineCategory,
			row.FailureType,
			row.CharacteristicHours,
			row.RULPercent,
			round4(row.PriorityWeight),
		)
	}

	if len(report.Flagged) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "# insufficient training data")
		fmt.Fprintln(bw, strings.Join(tableHeader[:4], "\t"))
		for _, f := range report.Flagged {
			fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n",
				f.MachineID,
				f.LastFailure.Format(utils.FailureTimestampLayout),
				f.MachineCategory,
				f.FailureType,
			)
		}
	}

	return bw.Flush()
}

// WriteTableFile writes the report to path, creating parent directories.
func WriteTableFile(path string, report models.Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteTable(f, report); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
