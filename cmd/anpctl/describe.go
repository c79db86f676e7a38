package main

import (
	"fmt"

	"github.com/danmuck/anp/internal/admin"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <type>...",
	Short: "Describe message types by name or number",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Type", "Name", "Family", "Role", "Namespace", "Subtype"})
		for _, arg := range args {
			typ, err := admin.ParseType(arg)
			if err != nil {
				return err
			}
			f := catalog.Split(typ)
			ns := f.Namespace.String()
			if f.Family == catalog.FamilyOANP {
				ns = fmt.Sprintf("OP %d", f.Namespace)
			}
			t.AppendRow(table.Row{
				fmt.Sprintf("0x%08x", typ),
				catalog.Name(typ),
				f.Family.String(),
				f.Role.String(),
				ns,
				f.Subtype,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}
