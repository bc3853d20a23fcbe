package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lakecat/lakecat/internal/schema"
)

// NewTableCmd creates the table command group.
func NewTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Table operations",
	}

	cmd.AddCommand(newTableCreateCmd())
	cmd.AddCommand(newTableDropCmd())
	cmd.AddCommand(newTableDescCmd())
	cmd.AddCommand(newTableListCmd())

	return cmd
}

func newTableCreateCmd() *cobra.Command {
	var (
		columns     string
		partitionBy string
		format      string
		delimiter   string
		location    string
		ifNotExists bool
	)

	cmd := &cobra.Command{
		Use:   "create <db.table>",
		Short: "Create a format table",
		Example: `  lakecat table create demo.events --columns "a:int:comment a,b:string:comment b"
  lakecat table create demo.logs --columns "a:int,b:string" --partition-by b --format csv --delimiter ";"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, tbl, err := splitTableName(args[0])
			if err != nil {
				return err
			}

			cols, err := parseColumns(columns)
			if err != nil {
				return err
			}

			cat, cfg, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			// Config supplies the format defaults when the flags are absent.
			if format == "" {
				format = cfg.Format.Default
			}

			if delimiter == "" {
				delimiter = cfg.Format.FieldDelimiter
			}

			desc := &schema.TableDescriptor{
				Database: db,
				Name:     tbl,
				Columns:  cols,
				Format:   format,
				Location: location,
			}

			if partitionBy != "" {
				desc.PartitionKeys = strings.Split(partitionBy, ",")
			}

			if delimiter != "" && delimiter != "," {
				desc.Options = map[string]string{"field-delimiter": delimiter}
			}

			if err := cat.CreateTable(context.Background(), desc, ifNotExists); err != nil {
				return err
			}

			fmt.Printf("Table '%s' created\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "Column list: name:type[:comment],...")
	cmd.Flags().StringVar(&partitionBy, "partition-by", "", "Comma-separated partition columns")
	cmd.Flags().StringVar(&format, "format", "", "File format (csv, json); default from format.default config")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV field delimiter; default from format.field_delimiter config")
	cmd.Flags().StringVar(&location, "location", "", "Explicit table location (location-in-properties mode)")
	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "Succeed silently if the table exists")
	_ = cmd.MarkFlagRequired("columns")

	return cmd
}

func newTableDropCmd() *cobra.Command {
	var ifExists bool

	cmd := &cobra.Command{
		Use:   "drop <db.table>",
		Short: "Drop a table and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, tbl, err := splitTableName(args[0])
			if err != nil {
				return err
			}

			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			if err := cat.DropTable(context.Background(), db, tbl, ifExists); err != nil {
				return err
			}

			fmt.Printf("Table '%s' dropped\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Succeed silently if the table is absent")

	return cmd
}

func newTableDescCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "desc <db.table>",
		Short: "Describe a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, tbl, err := splitTableName(args[0])
			if err != nil {
				return err
			}

			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			desc, err := cat.DescribeTable(context.Background(), db, tbl)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tNULLABLE\tPARTITION\tCOMMENT")

			for _, col := range desc.Columns {
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n",
					col.Name, col.Type, col.Nullable, desc.IsPartitionKey(col.Name), col.Comment)
			}

			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\nFormat:   %s\nLocation: %s\n", desc.Format, desc.Location)

			return nil
		},
	}
}

func newTableListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <database>",
		Short: "List tables in a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			names, err := cat.ListTables(context.Background(), args[0])
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Println(name)
			}

			return nil
		},
	}
}
