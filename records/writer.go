package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Writer interface {
	Write(Record) error
}

// FileWriter appends records as json lines to one file per process start
type FileWriter struct {
	mu   sync.Mutex
	path string
}

var _ Writer = new(FileWriter)

func NewFileWriter(dir string, start time.Time) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileWriter{
		path: filepath.Join(dir, start.Format("20060102T150405.000000000")+".jsonl"),
	}, nil
}

func (w *FileWriter) Path() string {
	return w.path
}

func (w *FileWriter) Write(record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// failedWriter rejects every record with the error that prevented opening the log
type failedWriter struct {
	err error
}

var _ Writer = failedWriter{}

func (f failedWriter) Write(Record) error {
	return fmt.Errorf("record log unavailable: %w", f.err)
}

// DiscardWriter drops every record
type DiscardWriter struct{}

var _ Writer = DiscardWriter{}

func (DiscardWriter) Write(Record) error {
	return nil
}
