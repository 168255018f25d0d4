package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/verisim/verisim/internal/sampler"
	"github.com/verisim/verisim/internal/stats"
	"github.com/verisim/verisim/internal/sweep"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// RenderSummary writes one table row per run, with the magnitude MaxAbs
// of each conservation stream and the run status.
func RenderSummary(w io.Writer, records []Record) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{
		"Engine", "Dt", "Mass", "Gravity", "Force",
		"Energy Err", "AngMom Err", "Pos Err", "Sim Time", "Status",
	})
	tbl.SetBorder(false)

	for _, rec := range records {
		p := rec.Point
		tbl.Append([]string{
			p.Engine,
			fmt.Sprintf("%g", p.StepSize),
			fmt.Sprintf("%g", p.Mass),
			fmt.Sprintf("%g", p.Gravity),
			fmt.Sprintf("%g", p.Force),
			maxAbs(rec, sampler.BundleEnergyError),
			maxAbs(rec, sampler.BundleAngMomentumErr),
			maxAbs(rec, sampler.BundleLinPositionErr),
			fmt.Sprintf("%.3f", rec.Scalars[sweep.ScalarSimTime]),
			status(rec),
		})
	}
	tbl.Render()
}

// RenderBundle writes the full kind→value map of one record's bundles,
// so a caller can apply its own pass/fail policy per statistic kind.
func RenderBundle(w io.Writer, rec Record) {
	tbl := tablewriter.NewWriter(w)
	header := []string{"Stream"}
	kinds := stats.DefaultKinds()
	for _, k := range kinds {
		header = append(header, string(k))
	}
	tbl.SetHeader(header)
	tbl.SetBorder(false)

	for _, name := range bundleOrder(rec) {
		row := []string{name}
		for _, k := range kinds {
			row = append(row, fmt.Sprintf("%.6e", rec.Bundles[name][k]))
		}
		tbl.Append(row)
	}
	tbl.Render()
}

func maxAbs(rec Record, bundle string) string {
	b, ok := rec.Bundles[bundle]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3e", b[stats.MaxAbs])
}

func status(rec Record) string {
	switch {
	case rec.Error != "":
		return errStyle.Render("ERROR")
	case rec.Passed:
		return passStyle.Render("PASS")
	default:
		return failStyle.Render("FAIL")
	}
}

// bundleOrder lists canonical streams first, then engine diagnostics.
func bundleOrder(rec Record) []string {
	order := make([]string, 0, len(rec.Bundles))
	for _, name := range csvBundles {
		if _, ok := rec.Bundles[name]; ok {
			order = append(order, name)
		}
	}
	for name := range rec.Bundles {
		if !isCanonical(name) {
			order = append(order, name)
		}
	}
	return order
}

func isCanonical(name string) bool {
	for _, b := range csvBundles {
		if b == name {
			return true
		}
	}
	return false
}
