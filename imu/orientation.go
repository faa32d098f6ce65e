// Package imu provides vessel orientation readings.
//
// Readings are text records, one per line:
//
//	timestamp,heading,pitch,roll,yaw[,valid]
//
// Angles are in radians, timestamp is in seconds. Optional valid flag is 0/1 or true/false (default true).
// Empty lines and lines starting with '#' are skipped by providers.
package imu

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoOrientation is returned when there is no valid reading yet
var ErrNoOrientation = errors.New("no valid orientation")

// Orientation is a single IMU reading
type Orientation struct {
	Timestamp float64
	Heading   float64
	Pitch     float64
	Roll      float64
	Yaw       float64
	Valid     bool
}

// Provider produces the latest orientation on demand
type Provider interface {
	LastOrientation(ctx context.Context) (Orientation, error)
}

// ParseRecord parses single text record
func ParseRecord(line string) (Orientation, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 5 && len(fields) != 6 {
		return Orientation{}, errors.Errorf("expected 5 or 6 fields, got %d", len(fields))
	}
	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Orientation{}, errors.Wrapf(err, "field %d", i)
		}
		values[i] = v
	}
	valid := true
	if len(fields) == 6 {
		v, err := strconv.ParseBool(strings.TrimSpace(fields[5]))
		if err != nil {
			return Orientation{}, errors.Wrap(err, "valid flag")
		}
		valid = v
	}
	return Orientation{
		Timestamp: values[0],
		Heading:   values[1],
		Pitch:     values[2],
		Roll:      values[3],
		Yaw:       values[4],
		Valid:     valid,
	}, nil
}

func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// StaticProvider always returns the same orientation
type StaticProvider struct {
	Orientation Orientation
}

// LastOrientation returns stored orientation
func (p StaticProvider) LastOrientation(ctx context.Context) (Orientation, error) {
	if err := ctx.Err(); err != nil {
		return Orientation{}, err
	}
	return p.Orientation, nil
}
