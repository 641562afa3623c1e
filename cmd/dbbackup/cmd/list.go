package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imedwei/mysql-pitr-backup/internal/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in the local catalog",
	Long: `List all full and incremental backups in the local catalog,
oldest first, with their creation time and size.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	artifacts, err := cat.ListAll()
	if err != nil {
		return err
	}

	if len(artifacts) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCREATED\tSIZE\tFILE")
	for _, a := range artifacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.Lineage,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
			utils.FormatBytes(a.SizeBytes),
			filepath.Base(a.Path),
		)
	}
	return w.Flush()
}
