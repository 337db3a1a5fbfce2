package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"

	"github.com/TobiSchelling/inksync/internal/kobodb"
)

// The watermark file format matches the state files written by the
// original export scripts, so existing state keeps working.
type watermarkFile struct {
	LastTimestamp string `json:"last_timestamp"`
}

// LoadWatermark reads the exported-through timestamp. A missing file
// yields the epoch, i.e. a full export.
func LoadWatermark(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Unix(0, 0).UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading watermark: %w", err)
	}

	var wf watermarkFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return time.Time{}, fmt.Errorf("parsing watermark: %w", err)
	}
	t, ok := kobodb.ParseTimestamp(wf.LastTimestamp)
	if !ok {
		return time.Time{}, fmt.Errorf("parsing watermark timestamp %q", wf.LastTimestamp)
	}
	return t, nil
}

// SaveWatermark persists the watermark atomically. The stored value never
// moves backwards: if the file already holds a later timestamp, it wins.
func SaveWatermark(path string, t time.Time) error {
	if prev, err := LoadWatermark(path); err == nil && prev.After(t) {
		return nil
	}

	data, err := json.Marshal(watermarkFile{LastTimestamp: t.UTC().Format(time.RFC3339)})
	if err != nil {
		return fmt.Errorf("encoding watermark: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing watermark: %w", err)
	}
	return nil
}
