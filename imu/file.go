package imu

import (
	"bufio"
	"context"
	"os"

	"github.com/pkg/errors"
)

// FileProvider reads orientation log file. Every call re-reads the file, so it follows a log that is being appended to
type FileProvider struct {
	path string
}

// NewFileProvider creates provider for given log file
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// LastOrientation returns the last valid record of the log.
// Malformed lines are skipped: the writer may be in the middle of a line
func (p *FileProvider) LastOrientation(ctx context.Context) (Orientation, error) {
	file, err := os.Open(p.path)
	if err != nil {
		return Orientation{}, errors.Wrap(err, "can't open orientation log")
	}
	defer file.Close()

	last := Orientation{}
	found := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Orientation{}, err
		}
		line := scanner.Text()
		if skipLine(line) {
			continue
		}
		o, err := ParseRecord(line)
		if err != nil || !o.Valid {
			continue
		}
		last = o
		found = true
	}
	if err := scanner.Err(); err != nil {
		return Orientation{}, errors.Wrap(err, "can't read orientation log")
	}
	if !found {
		return Orientation{}, ErrNoOrientation
	}
	return last, nil
}
