package restore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/imedwei/mysql-pitr-backup/internal/config"
)

// MySQLRestorer implements the Restorer interface by piping statements into
// the mysql client.
type MySQLRestorer struct {
	host       string
	port       int
	user       string
	password   string
	database   string
	restoreBin string
}

// NewMySQLRestorer creates a mysql-client-backed Restorer from configuration.
func NewMySQLRestorer(cfg *config.Config) *MySQLRestorer {
	return &MySQLRestorer{
		host:       cfg.DBHost,
		port:       cfg.DBPort,
		user:       cfg.DBUser,
		password:   cfg.DBPassword,
		database:   cfg.DBName,
		restoreBin: "mysql",
	}
}

// Restore implements Restorer. A non-zero exit surfaces as a ToolError
// carrying the client's stderr.
func (r *MySQLRestorer) Restore(ctx context.Context, input io.Reader) error {
	cmd := exec.CommandContext(ctx, r.restoreBin,
		"-h", r.host,
		"-P", fmt.Sprintf("%d", r.port),
		"-u", r.user,
		r.database,
	)

	cmd.Env = append(os.Environ(), "MYSQL_PWD="+r.password)
	cmd.Stdin = input

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.restoreBin, err)
	}

	var stderrOutput strings.Builder
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		stderrOutput.WriteString(scanner.Text())
		stderrOutput.WriteString("\n")
	}

	if err := cmd.Wait(); err != nil {
		return &ToolError{
			Stderr: strings.TrimSpace(stderrOutput.String()),
			Err:    err,
		}
	}

	return nil
}
