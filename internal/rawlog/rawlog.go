// Package rawlog reads session log files written before finalization.
package rawlog

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/verte-zerg/keytally/internal/keylog"
)

const (
	summaryTitle = "Key Statistics:"
	summaryEnd   = "Total Keystrokes:"
)

// ErrSummaryFile is returned when the file holds a finalized report and no keys after it.
var ErrSummaryFile = errors.New("log file already contains a finalized report")

// Load reads one key name per line from the provided log file.
// A leading "Key Log:" header and blank lines are skipped. When the file starts
// with the report of an earlier session, the report block is skipped and the
// keys appended after it are returned.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log file.
			_ = cerr
		}
	}()

	var keys []string
	first := true
	inSummary, hadSummary := false, false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			first = false
			if line == summaryTitle {
				inSummary, hadSummary = true, true
				continue
			}
			if line == keylog.Header {
				continue
			}
		}
		if inSummary {
			if strings.HasPrefix(line, summaryEnd) {
				inSummary = false
			}
			continue
		}
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if hadSummary && len(keys) == 0 {
		return nil, ErrSummaryFile
	}
	return keys, nil
}
