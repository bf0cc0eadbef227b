package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/raster"
	"github.com/jsvensson/oklchstudio/internal/server"
	"github.com/spf13/cobra"
)

var errOutOfGamut = errors.New("color is outside the sRGB gamut")

func (a *app) convertCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "convert <color>",
		Short: "Show a color as hex, oklch(), hsl() and rgb()",
		Long:  `Accepts #hex, oklch(L C H), hsl(H S% L%) or rgb(R G B).`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := color.Parse(args[0])
			if err != nil {
				return err
			}
			return printColor(cmd.OutOrStdout(), server.Describe(c), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) gamutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gamut <color>",
		Short: "Map a color into sRGB",
		Long: `Prints the nearest sRGB color at the same lightness and hue.
Exits with status 1 when the input was outside the gamut.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := color.Parse(args[0])
			if err != nil {
				return err
			}

			mapped := color.ToGamut(c)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.OKLCHToHex(mapped), mapped.CSS())
			if !color.IsInGamut(c) {
				return errOutOfGamut
			}
			return nil
		},
	}
}

func (a *app) pickCmd() *cobra.Command {
	var (
		x, y          int
		width, height int
		hue           float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Read the color under a pointer position on a color plane",
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
			l, c, err := raster.PlanePoint(x, y, width, height)
			if err != nil {
				return err
			}
			h := raster.PlaneKey(hue, width, height).Hue
			return printColor(cmd.OutOrStdout(), server.Describe(color.OKLCH{L: l, C: c, H: h}), asJSON)
		},
	}
	cmd.Flags().IntVar(&x, "x", 0, "pointer x position")
	cmd.Flags().IntVar(&y, "y", 0, "pointer y position")
	cmd.Flags().IntVar(&width, "width", 256, "plane width (default raster.width)")
	cmd.Flags().IntVar(&height, "height", 256, "plane height (default raster.height)")
	cmd.Flags().Float64Var(&hue, "hue", 0, "plane hue in degrees")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printColor(w io.Writer, info server.ColorInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(w, "hex    %s\n", info.Hex)
	fmt.Fprintf(w, "oklch  %s\n", info.OKLCH)
	fmt.Fprintf(w, "hsl    %s\n", info.HSL)
	fmt.Fprintf(w, "rgb    %s\n", info.RGB)
	if info.InGamut {
		fmt.Fprintln(w, "gamut  sRGB")
	} else {
		fmt.Fprintf(w, "gamut  outside sRGB, maps to %s\n", info.Gamut)
	}
	return nil
}
