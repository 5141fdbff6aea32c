package records

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
)

// Read iterates the records of a log file. Iteration stops at the first error.
func Read(path string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(Record{}, err)
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(nil, 64*1024*1024)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			if len(scanner.Bytes()) == 0 {
				continue
			}
			var record Record
			if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
				yield(Record{}, fmt.Errorf("%s:%d: %w", path, lineNum, err))
				return
			}
			if !yield(record, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}
