package run

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/coral"
)

// max width for labels: "modified "
var labelStyle = lipgloss.NewStyle().
	Width(10).
	Bold(true)

var valueStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#999999"))

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

func (a *app) statCmd() *coral.Command {
	return &coral.Command{
		Use:   "stat <location>",
		Short: "print a file's size and modification time",
		Long:  "Print the location, size and modification time of the file at location.",
		Args:  coral.ExactArgs(1),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			stats, err := d.GetStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, labelStyle.Render("location")+valueStyle.Render(args[0]))
			fmt.Fprintln(out, labelStyle.Render("size")+valueStyle.Render(fmt.Sprintf("%d (%s)", stats.Size, byteSize(stats.Size))))
			fmt.Fprintln(out, labelStyle.Render("modified")+valueStyle.Render(stats.Modified.Format(time.RFC3339)))
			return nil
		},
	}
}

// byteSize formats size with a unit, e.g. "1.50 KB"
func byteSize(size int64) string {
	val := float64(size)
	unit := 0
	for val >= 1000 && unit < len(sizeUnits)-1 {
		val /= 1000
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", size, sizeUnits[0])
	}
	return fmt.Sprintf("%.2f %s", val, sizeUnits[unit])
}
