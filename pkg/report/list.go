package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// RenderGroupList writes the `manage list` output: one line per group,
// or a full source table when verbose is set.
func RenderGroupList(w io.Writer, m *types.Manifest, verbose bool) error {
	if len(m.Groups) == 0 {
		fmt.Fprintln(w, "no groups configured")
		return nil
	}

	if !verbose {
		for _, g := range m.Groups {
			noun := "sources"
			if len(g.Sources) == 1 {
				noun = "source"
			}
			fmt.Fprintf(w, "%s (%d %s)\n", g.Name, len(g.Sources), noun)
		}
		return nil
	}

	data := pterm.TableData{{"Group", "Path", "Type", "Platforms", "Extract"}}
	for _, g := range m.Groups {
		for _, s := range g.Sources {
			data = append(data, []string{
				g.Name,
				s.Path,
				sourceKindLabel(s),
				platformsLabel(s),
				extractLabel(s),
			})
		}
	}

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, rendered)
	return nil
}

func sourceKindLabel(s types.Source) string {
	if s.Kind == types.KindDirectory {
		return fmt.Sprintf("directory (%s)", s.Mode())
	}
	return string(s.Kind)
}

func platformsLabel(s types.Source) string {
	if len(s.Platforms) == 0 {
		return "all"
	}
	names := make([]string, len(s.Platforms))
	for i, t := range s.Platforms {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func extractLabel(s types.Source) string {
	if s.Extract == nil {
		return "-"
	}
	return fmt.Sprintf("%s → %s", s.Extract.Field, s.Extract.Target)
}
