package worklist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads the run's unit-of-work list: one location identifier per
// line, blank lines ignored.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("work list open: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("work list read: %w", err)
	}
	return entries, nil
}
