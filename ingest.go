package doat

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// ReadFromText bulk-loads t from path: each non-blank line becomes a key,
// with value the 1-based line number it appeared on. Blank lines are
// skipped but still count toward the line numbers.
func ReadFromText(t Trie, path string, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSource, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lineNo int32
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := t.Insert([]byte(line), lineNo); err != nil {
			if errors.Is(err, ErrOutOfMemory) {
				return err
			}
			return fmt.Errorf("%w: line %d: %v", ErrBadSource, lineNo, err)
		}
		if verbose {
			tracer().Infof("inserted %q -> %d", line, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSource, err)
	}
	return nil
}
