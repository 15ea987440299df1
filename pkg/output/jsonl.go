package output

import (
	"encoding/json"
	"os"
	"sync"
)

// JsonlWriter appends one JSON document per line. Used for the optional scan
// log; safe for concurrent use.
type JsonlWriter struct {
	file    *os.File
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJsonlWriter opens path for appending.
func NewJsonlWriter(path string) (*JsonlWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &JsonlWriter{file: file, encoder: json.NewEncoder(file)}, nil
}

// Log writes one entry.
func (w *JsonlWriter) Log(entry interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.encoder.Encode(entry)
}

// Close closes the underlying file.
func (w *JsonlWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
