package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/cavern/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	historyFile *os.File
	windowFile  *os.File

	// Track if headers have been written
	historyHeaderWritten bool
	windowHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "history.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating history.csv: %w", err)
	}
	om.historyFile = f

	f, err = os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		om.historyFile.Close()
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	om.windowFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteHistory appends a dispatch record to history.csv.
func (om *OutputManager) WriteHistory(r Record) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.historyFile, []Record{r}, &om.historyHeaderWritten); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// WriteWindow appends a window stats record to windows.csv.
func (om *OutputManager) WriteWindow(s WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.windowFile, []WindowStats{s}, &om.windowHeaderWritten); err != nil {
		return fmt.Errorf("writing window stats: %w", err)
	}
	return nil
}

// writeRows writes rows, including the header only on the first call.
func writeRows(w io.Writer, rows any, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, w); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, w)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.historyFile, om.windowFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadHistory loads records written to a history.csv.
func ReadHistory(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	for i := range records {
		records[i].At = time.UnixMilli(records[i].UnixMS)
	}
	return records, nil
}
