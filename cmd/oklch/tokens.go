package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/jsvensson/oklchstudio"
	"github.com/jsvensson/oklchstudio/internal/format"
	"github.com/spf13/cobra"
)

var errUnformatted = errors.New("some files are not formatted")

func (a *app) generateCmd() *cobra.Command {
	var (
		tokens    string
		out       string
		templates string
		apps      []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render templates against a token file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := oklchstudio.Load(tokens)
			if err != nil {
				return err
			}

			e := &oklchstudio.Engine{
				TemplatesDir: templates,
				OutputDir:    out,
				Apps:         apps,
			}
			if err := e.Run(tf); err != nil {
				return fmt.Errorf("generating: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated files in %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&tokens, "tokens", "tokens.hcl", "path to token HCL file")
	cmd.Flags().StringVar(&out, "out", "output", "output directory")
	cmd.Flags().StringVar(&templates, "templates", "templates", "templates directory")
	cmd.Flags().StringArrayVar(&apps, "app", nil, "generate only for specific templates (can be repeated)")
	return cmd
}

func (a *app) cssCmd() *cobra.Command {
	var (
		tokens string
		out    string
		opts   oklchstudio.CSSOptions
	)

	cmd := &cobra.Command{
		Use:   "css",
		Short: "Write the palette and tokens as CSS custom properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := oklchstudio.Load(tokens)
			if err != nil {
				return err
			}

			if out == "" {
				return oklchstudio.WriteCSS(cmd.OutOrStdout(), tf, opts)
			}

			var buf bytes.Buffer
			if err := oklchstudio.WriteCSS(&buf, tf, opts); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			log.Infof("wrote %s", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&tokens, "tokens", "tokens.hcl", "path to token HCL file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "prefix for token property names")
	cmd.Flags().StringVar(&opts.Selector, "selector", ":root", "selector wrapping the declarations")
	cmd.Flags().BoolVar(&opts.SkipPalette, "skip-palette", false, "omit --palette-* properties")
	return cmd
}

func (a *app) fmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Format token files",
		Long:  "Format one or more token files in-place. Prints the name of each file that was modified.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasErrors := false
			needsFormatting := false

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", path, err)
					hasErrors = true
					continue
				}

				content := string(data)
				formatted, err := format.Format(content)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting %s: %v\n", path, err)
					hasErrors = true
					continue
				}
				if formatted == content {
					continue
				}

				fmt.Fprintln(cmd.OutOrStdout(), path)
				needsFormatting = true

				if !check {
					if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Error writing %s: %v\n", path, err)
						hasErrors = true
					}
				}
			}

			if hasErrors {
				return errors.New("formatting failed")
			}
			if check && needsFormatting {
				return errUnformatted
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&check, "check", "c", false, "check if files are formatted (do not write changes)")
	return cmd
}
