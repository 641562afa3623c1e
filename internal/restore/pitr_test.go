package restore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
)

// seedArtifact writes a backup file into the catalog with the creation time
// the chain selector will observe.
func seedArtifact(t *testing.T, dir string, lineage catalog.Lineage, created time.Time, content string) {
	t.Helper()
	name := catalog.BackupFilename(lineage, created)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to seed artifact: %v", err)
	}
	if err := os.Chtimes(path, created, created); err != nil {
		t.Fatalf("failed to set artifact mtime: %v", err)
	}
}

func seedCatalog(t *testing.T) (*catalog.Catalog, time.Time) {
	t.Helper()
	cat := catalog.New(t.TempDir())
	if err := cat.EnsureLayout(); err != nil {
		t.Fatalf("failed to create catalog layout: %v", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	seedArtifact(t, cat.FullDir(), catalog.LineageFull, base, "full-noon")
	seedArtifact(t, cat.IncrementalDir(), catalog.LineageIncremental, base.Add(1*time.Hour), "incr-13")
	seedArtifact(t, cat.IncrementalDir(), catalog.LineageIncremental, base.Add(2*time.Hour), "incr-14")
	seedArtifact(t, cat.IncrementalDir(), catalog.LineageIncremental, base.Add(3*time.Hour), "incr-15")
	return cat, base
}

func TestPointInTimeRestore_ReplaysChainInOrder(t *testing.T) {
	cat, base := seedCatalog(t)
	restorer := &fakeRestorer{}
	pitr := NewPointInTimeRestorer(cat, restorer, testLogger())

	// Target between the second and third incremental
	err := pitr.RestoreToPointInTime(context.Background(), base.Add(150*time.Minute))
	if err != nil {
		t.Fatalf("RestoreToPointInTime() failed: %v", err)
	}

	want := []string{"full-noon", "incr-13", "incr-14"}
	if len(restorer.applied) != len(want) {
		t.Fatalf("applied %d artifacts, want %d", len(restorer.applied), len(want))
	}
	for i, content := range want {
		if restorer.applied[i] != content {
			t.Errorf("artifact %d = %q, want %q", i, restorer.applied[i], content)
		}
	}
}

func TestPointInTimeRestore_TargetBeforeFirstFull(t *testing.T) {
	cat, base := seedCatalog(t)
	restorer := &fakeRestorer{}
	pitr := NewPointInTimeRestorer(cat, restorer, testLogger())

	err := pitr.RestoreToPointInTime(context.Background(), base.Add(-1*time.Hour))
	if !errors.Is(err, ErrNoSuitableBaseline) {
		t.Fatalf("error = %v, want ErrNoSuitableBaseline", err)
	}
	if restorer.calls != 0 {
		t.Error("restore tool invoked despite unsatisfiable target")
	}
}

func TestPointInTimeRestore_StopsOnFirstFailure(t *testing.T) {
	cat, base := seedCatalog(t)
	// Full applies, first incremental fails
	restorer := &fakeRestorer{failOn: 2}
	pitr := NewPointInTimeRestorer(cat, restorer, testLogger())

	err := pitr.RestoreToPointInTime(context.Background(), base.Add(4*time.Hour))
	if err == nil {
		t.Fatal("RestoreToPointInTime() succeeded, want failure on incremental")
	}

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Errorf("error = %v, want *ToolError in chain", err)
	}

	// Only the full backup made it through; the failed incremental and
	// everything after it were never recorded as applied.
	if len(restorer.applied) != 1 || restorer.applied[0] != "full-noon" {
		t.Errorf("applied = %q, want only the full backup", restorer.applied)
	}
	if restorer.calls != 2 {
		t.Errorf("restore tool called %d times, want 2", restorer.calls)
	}
}

func TestPointInTimeRestore_TargetNowReplaysEverything(t *testing.T) {
	cat, _ := seedCatalog(t)
	restorer := &fakeRestorer{}
	pitr := NewPointInTimeRestorer(cat, restorer, testLogger())

	if err := pitr.RestoreToPointInTime(context.Background(), time.Now()); err != nil {
		t.Fatalf("RestoreToPointInTime() failed: %v", err)
	}
	if len(restorer.applied) != 4 {
		t.Errorf("applied %d artifacts, want 4", len(restorer.applied))
	}
}
