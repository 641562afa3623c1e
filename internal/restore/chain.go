// Package restore replays backup chains against the database.
package restore

import (
	"errors"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
)

// ErrNoSuitableBaseline indicates no full backup exists at or before the
// requested target time; state that old cannot be reconstructed.
var ErrNoSuitableBaseline = errors.New("no suitable full backup at or before the target time")

// Chain is the minimal set of artifacts reconstructing database state at a
// target time: one full backup plus the incrementals taken after it, up to
// and including the target.
type Chain struct {
	Full         catalog.Artifact
	Incrementals []catalog.Artifact
}

// Len returns the number of artifacts in the chain.
func (c Chain) Len() int {
	return 1 + len(c.Incrementals)
}

// SelectChain picks the restore chain for a target time from full and
// incremental artifact listings, both ordered ascending by creation time.
//
// The baseline is the latest full backup with CreatedAt <= target; newer
// baselines minimize the incremental replay distance. Incrementals are kept
// when their CreatedAt falls in (baseline, target], ascending, because the
// row-timestamp filter makes them cumulative: a row touched twice must be
// replayed oldest-first. Both bounds are inclusive of exact matches on the
// target.
func SelectChain(full, incremental []catalog.Artifact, target time.Time) (Chain, error) {
	var chain Chain

	// Scan newest to oldest for the baseline. Equal timestamps resolve to
	// the artifact later in catalog order, deterministically.
	found := false
	for i := len(full) - 1; i >= 0; i-- {
		if !full[i].CreatedAt.After(target) {
			chain.Full = full[i]
			found = true
			break
		}
	}
	if !found {
		return Chain{}, ErrNoSuitableBaseline
	}

	for _, a := range incremental {
		if a.CreatedAt.After(chain.Full.CreatedAt) && !a.CreatedAt.After(target) {
			chain.Incrementals = append(chain.Incrementals, a)
		}
	}

	return chain, nil
}
