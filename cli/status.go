package cli

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	actx "go.hackfix.me/vemigrate/app/context"
	aerrors "go.hackfix.me/vemigrate/app/errors"
	"go.hackfix.me/vemigrate/migrator"
)

// The Status command shows the state of every migration on disk, and of
// applied migrations that are missing from disk.
type Status struct {
	Pending bool `help:"Only show pending migrations."`
}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context, g *Globals) error {
	m, closeStore, err := g.newMigrator(appCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	states, err := m.Status(appCtx.Ctx)
	if err != nil {
		return aerrors.NewWithCause("failed reading migration status", err, "path", g.Path)
	}

	data := make([][]string, 0, len(states))
	for _, st := range states {
		if c.Pending && st.State != migrator.Pending {
			continue
		}
		data = append(data, []string{st.ID.String(), st.Name, st.State.String()})
	}

	if len(data) == 0 {
		appCtx.Logger.Info("no migrations found")
		return nil
	}

	if err = renderTable([]string{"ID", "NAME", "STATE"}, data, appCtx.Stdout); err != nil {
		return aerrors.NewWithCause("failed rendering status table", err)
	}

	return nil
}

func renderTable(header []string, data [][]string, w io.Writer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(
			tw.Rendition{
				Borders: tw.BorderNone,
				Symbols: tw.NewSymbols(tw.StyleASCII),
				Settings: tw.Settings{
					Lines: tw.Lines{
						ShowHeaderLine: tw.Off,
						ShowFooterLine: tw.Off,
						ShowTop:        tw.Off,
						ShowBottom:     tw.Off,
					},
					Separators: tw.Separators{
						ShowHeader:     tw.Off,
						ShowFooter:     tw.Off,
						BetweenRows:    tw.Off,
						BetweenColumns: tw.Off,
					},
				},
			},
		)),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)

	table.Header(header)
	if err := table.Bulk(data); err != nil {
		return err //nolint:wrapcheck // This is wrapped by the caller.
	}

	return table.Render() //nolint:wrapcheck // This is wrapped by the caller.
}
