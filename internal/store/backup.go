package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is the number of ledger backups kept per project.
	MaxBackups = 3

	// backupSuffix is the extension marking a ledger backup.
	backupSuffix = ".bak"
)

// Backup creates a timestamped copy of the ledger file and prunes
// old backups beyond MaxBackups. Returns the backup path, or "" when
// there is no ledger to back up. Backfill rebuilds call this before
// rewriting history.
func (l *Ledger) Backup() (string, error) {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // Nothing to back up
		}
		return "", fmt.Errorf("failed to read index for backup: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s%s.%s", l.Path(), backupSuffix, timestamp)

	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write index backup: %w", err)
	}

	// Pruning is best-effort; the backup itself succeeded.
	_ = l.pruneBackups()

	return backupPath, nil
}

// ListBackups returns all ledger backups, newest first.
func (l *Ledger) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list index directory: %w", err)
	}

	prefix := IndexFileName + backupSuffix + "."
	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(l.dir, entry.Name()))
		}
	}

	sort.Slice(backups, func(i, j int) bool {
		infoI, errI := os.Stat(backups[i])
		infoJ, errJ := os.Stat(backups[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return backups, nil
}

// pruneBackups removes backups beyond MaxBackups, keeping the newest.
func (l *Ledger) pruneBackups() error {
	backups, err := l.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) <= MaxBackups {
		return nil
	}
	for _, backup := range backups[MaxBackups:] {
		if err := os.Remove(backup); err != nil {
			continue
		}
	}
	return nil
}
