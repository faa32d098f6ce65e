package vision

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// OpenCapture opens video file or stream URL. Numeric source which is not an existing file is treated as camera device id
func OpenCapture(source string) (*gocv.VideoCapture, error) {
	if _, err := os.Stat(source); err != nil {
		if id, convErr := strconv.Atoi(source); convErr == nil {
			capture, err := gocv.VideoCaptureDevice(id)
			if err != nil {
				return nil, errors.Wrapf(err, "can't open camera %d", id)
			}
			return capture, nil
		}
	}
	capture, err := gocv.VideoCaptureFile(source)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open video source %s", source)
	}
	return capture, nil
}
