package dataset

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	records := []Record{
		{ID: "a", Split: SplitTrain, Messages: []Message{{Role: "user", Content: "one"}}},
		{ID: "b", Split: SplitValidation, Messages: []Message{{Role: "user", Content: "two"}}},
		{ID: "c", Split: SplitTrain, Messages: []Message{{Role: "user", Content: "three"}}},
	}

	w := NewWriter(t.TempDir())
	train, validation, err := w.Write(records)
	require.NoError(t, err)
	assert.Equal(t, 2, train)
	assert.Equal(t, 1, validation)

	assert.Equal(t, []string{"a", "c"}, readIDs(t, w.TrainPath()))
	assert.Equal(t, []string{"b"}, readIDs(t, w.ValidationPath()))
}

func TestWriter_Write_Empty(t *testing.T) {
	w := NewWriter(t.TempDir())
	train, validation, err := w.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, train)
	assert.Zero(t, validation)

	// Both split files exist even when empty
	_, err = os.Stat(w.TrainPath())
	assert.NoError(t, err)
	_, err = os.Stat(w.ValidationPath())
	assert.NoError(t, err)
}

func readIDs(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		ids = append(ids, rec.ID)
	}
	require.NoError(t, scanner.Err())
	return ids
}
