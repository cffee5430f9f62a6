package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/databrief-go/pkg/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the wire layout of every record in the schema file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}
		return runInspect(reg, cmd.OutOrStdout())
	},
}

// runInspect 按名称顺序输出每个记录的字段类型与位置：
// 非布尔字段按声明顺序内联，布尔字段落在尾部位图中。
func runInspect(reg *schema.Registry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, name := range reg.Names() {
		s, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "record %s\n", s.Name)
		bit := 0
		for _, f := range s.Fields {
			loc := "inline"
			if f.Type.Kind == schema.KindBool {
				loc = fmt.Sprintf("trailer byte %d bit %d", bit/8, bit%8)
				bit++
			} else if n := f.Type.Kind.FixedSize(); n > 0 {
				loc = fmt.Sprintf("inline %dB", n)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Name, f.Type, loc)
		}
		fmt.Fprintf(tw, "  trailer\t%d bool(s)\t%dB\n", s.BoolCount(), s.TrailerSize())
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
