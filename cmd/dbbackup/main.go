package main

import (
	"os"

	"github.com/imedwei/mysql-pitr-backup/cmd/dbbackup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
