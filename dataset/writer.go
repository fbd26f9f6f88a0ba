package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists dataset records as JSONL split files.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// TrainPath returns the train split file path.
func (w *Writer) TrainPath() string {
	return filepath.Join(w.dir, "train.jsonl")
}

// ValidationPath returns the validation split file path.
func (w *Writer) ValidationPath() string {
	return filepath.Join(w.dir, "validation.jsonl")
}

// Write routes records to their split files, one JSON object per line.
// It returns the per-split record counts.
func (w *Writer) Write(records []Record) (train, validation int, err error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return 0, 0, fmt.Errorf("create dataset directory: %w", err)
	}

	trainFile, err := os.Create(w.TrainPath())
	if err != nil {
		return 0, 0, fmt.Errorf("create train split: %w", err)
	}
	defer trainFile.Close()

	validationFile, err := os.Create(w.ValidationPath())
	if err != nil {
		return 0, 0, fmt.Errorf("create validation split: %w", err)
	}
	defer validationFile.Close()

	trainEnc := json.NewEncoder(trainFile)
	validationEnc := json.NewEncoder(validationFile)

	for _, rec := range records {
		if rec.Split == SplitValidation {
			if err := validationEnc.Encode(rec); err != nil {
				return train, validation, fmt.Errorf("encode record %s: %w", rec.ID, err)
			}
			validation++
			continue
		}
		if err := trainEnc.Encode(rec); err != nil {
			return train, validation, fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
		train++
	}

	if err := trainFile.Sync(); err != nil {
		return train, validation, fmt.Errorf("flush train split: %w", err)
	}
	if err := validationFile.Sync(); err != nil {
		return train, validation, fmt.Errorf("flush validation split: %w", err)
	}

	return train, validation, nil
}
