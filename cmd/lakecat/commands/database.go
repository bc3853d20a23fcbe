package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDatabaseCmd creates the database command group.
func NewDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Database operations",
	}

	cmd.AddCommand(newDatabaseCreateCmd())
	cmd.AddCommand(newDatabaseDropCmd())
	cmd.AddCommand(newDatabaseListCmd())

	return cmd
}

func newDatabaseCreateCmd() *cobra.Command {
	var ifNotExists bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			if err := cat.CreateDatabase(context.Background(), args[0], ifNotExists); err != nil {
				return err
			}

			fmt.Printf("Database '%s' created\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "Succeed silently if the database exists")

	return cmd
}

func newDatabaseDropCmd() *cobra.Command {
	var (
		ifExists bool
		cascade  bool
	)

	cmd := &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			if err := cat.DropDatabase(context.Background(), args[0], ifExists, cascade); err != nil {
				return err
			}

			fmt.Printf("Database '%s' dropped\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Succeed silently if the database is absent")
	cmd.Flags().BoolVar(&cascade, "cascade", false, "Drop contained tables first")

	return cmd
}

func newDatabaseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, closer, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer closer()

			names, err := cat.ListDatabases(context.Background())
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
