package main

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/jsvensson/oklchstudio/internal/raster"
	"github.com/spf13/cobra"
)

func (a *app) planeCmd() *cobra.Command {
	var (
		hue           float64
		width, height int
		scale         int
		out           string
	)

	cmd := &cobra.Command{
		Use:   "plane",
		Short: "Render the lightness/chroma plane for a hue as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				width = a.cfg.Raster.Width
			}
			if !cmd.Flags().Changed("height") {
				height = a.cfg.Raster.Height
			}
			if err := checkHue(hue); err != nil {
				return err
			}
			buf, err := raster.ColorPlane(hue, width, height)
			if err != nil {
				return err
			}
			return writeRaster(cmd.OutOrStdout(), out, buf, width, height, scale)
		},
	}
	cmd.Flags().Float64Var(&hue, "hue", 0, "hue in degrees")
	cmd.Flags().IntVar(&width, "width", 256, "width in pixels (default raster.width)")
	cmd.Flags().IntVar(&height, "height", 256, "height in pixels (default raster.height)")
	cmd.Flags().IntVar(&scale, "scale", 1, "resample the output by this factor")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) stripCmd() *cobra.Command {
	var (
		width, height int
		scale         int
		out           string
	)

	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Render the hue strip as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := raster.HueStrip(width, height)
			if err != nil {
				return err
			}
			return writeRaster(cmd.OutOrStdout(), out, buf, width, height, scale)
		},
	}
	cmd.Flags().IntVar(&width, "width", 360, "width in pixels")
	cmd.Flags().IntVar(&height, "height", 24, "height in pixels")
	cmd.Flags().IntVar(&scale, "scale", 1, "resample the output by this factor")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func checkHue(hue float64) error {
	if math.IsNaN(hue) || math.IsInf(hue, 0) {
		return fmt.Errorf("invalid hue %v", hue)
	}
	return nil
}

// writeRaster encodes buf as PNG to path, or to stdout when path is empty.
func writeRaster(stdout io.Writer, path string, buf []byte, width, height, scale int) error {
	if scale < 1 {
		return fmt.Errorf("scale must be at least 1, got %d", scale)
	}

	var data bytes.Buffer
	if scale == 1 {
		if err := raster.EncodePNG(&data, buf, width, height); err != nil {
			return err
		}
	} else {
		img, err := raster.Image(buf, width, height)
		if err != nil {
			return err
		}
		scaled, err := raster.Scale(img, width*scale, height*scale)
		if err != nil {
			return err
		}
		if err := png.Encode(&data, scaled); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
	}

	if path == "" {
		_, err := stdout.Write(data.Bytes())
		return err
	}
	if err := os.WriteFile(path, data.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Infof("wrote %s", path)
	return nil
}
