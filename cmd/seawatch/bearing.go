package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LdDl/seawatch/geometry"
)

var bearingFlags struct {
	width         int
	height        int
	viewportAngle float64
	x             float64
}

var bearingCmd = &cobra.Command{
	Use:   "bearing",
	Short: "Calculate bearing of pixel column",
	Long: `Bearing prints angle in degrees between the camera axis and given pixel column.
Negative values are to the left of the frame center.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bearingFlags.width <= 0 || bearingFlags.height <= 0 {
			return errors.Errorf("frame size must be positive, got %dx%d", bearingFlags.width, bearingFlags.height)
		}
		if bearingFlags.x < 0 || bearingFlags.x > float64(bearingFlags.width) {
			return errors.Errorf("x must be within [0; %d], got %f", bearingFlags.width, bearingFlags.x)
		}
		angle := geometry.Bearing(float64(bearingFlags.width), float64(bearingFlags.height), bearingFlags.viewportAngle, bearingFlags.x)
		fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", angle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bearingCmd)
	bearingCmd.Flags().IntVar(&bearingFlags.width, "width", 640, "Frame width, px")
	bearingCmd.Flags().IntVar(&bearingFlags.height, "height", 480, "Frame height, px")
	bearingCmd.Flags().Float64Var(&bearingFlags.viewportAngle, "viewport-angle", 78, "Camera field of view, degrees")
	bearingCmd.Flags().Float64Var(&bearingFlags.x, "x", 320, "Pixel column")
}
