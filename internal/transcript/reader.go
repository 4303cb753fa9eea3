package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// MaxLineSize is the maximum buffer size for transcript lines (1MB).
// Lines with very long assistant responses exceed the default 64KB
// bufio limit.
const MaxLineSize = 1024 * 1024

// Scan streams JSONL entries from r, invoking fn for each
// successfully parsed entry in file order. fn returns false to stop
// early. Blank lines are skipped silently; malformed lines are
// skipped with a warning.
func Scan(r io.Reader, fn func(Entry) bool) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			slog.Warn("skipping malformed transcript line", "line", lineNum, "error", err)
			continue
		}

		if !fn(entry) {
			return nil
		}
	}

	return scanner.Err()
}

// ScanFile opens path and streams its entries through fn. The file is
// re-opened on every call, so scans are independently restartable.
func ScanFile(path string, fn func(Entry) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	defer f.Close()

	if err := Scan(f, fn); err != nil {
		return fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	return nil
}

// ReadFile parses the whole transcript at path into a slice of
// entries, preserving file order.
func ReadFile(path string) ([]Entry, error) {
	var entries []Entry
	err := ScanFile(path, func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
