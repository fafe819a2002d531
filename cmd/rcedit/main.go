// Command rcedit edits the resources of a Windows PE/PE32+ executable
// in place: its icon, version information, and subsystem, without
// requiring Windows or the native rcedit tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	pe "github.com/simonbuchan/npm-exe-edit"
	"github.com/simonbuchan/npm-exe-edit/internal/filecopy"
	"github.com/simonbuchan/npm-exe-edit/internal/ioboundary"
	"github.com/simonbuchan/npm-exe-edit/internal/log"
)

type flags struct {
	verbose        bool
	console        bool
	gui            bool
	iconPath       string
	noIcon         bool
	fileVersion    string
	productVersion string
	setVersion     [][2]string
	deleteVersion  []string
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:           "rcedit INPUT_EXE OUTPUT_EXE",
		Short:         "Edit resources (icon, version info, subsystem) of a PE executable",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], f)
		},
	}

	root.Flags().BoolVar(&f.verbose, "verbose", false, "log parsed header and diagnostic detail before editing")
	root.Flags().BoolVar(&f.console, "console", false, "switch the target to the console subsystem")
	root.Flags().BoolVar(&f.gui, "gui", false, "switch the target to the GUI subsystem")
	root.Flags().StringVar(&f.iconPath, "icon", "", "replace the icon with the images in this .ico file")
	root.Flags().BoolVar(&f.noIcon, "no-icon", false, "remove the icon resources")
	root.Flags().StringVar(&f.fileVersion, "file-version", "", "set FIXEDFILEINFO file version, e.g. 1.2.3.4")
	root.Flags().StringVar(&f.productVersion, "product-version", "", "set FIXEDFILEINFO product version")
	root.Flags().StringArrayVar(&f.deleteVersion, "delete-version", nil, "NAME, repeatable")

	// --set-version takes two separate tokens (NAME VALUE), the same
	// convention the native rcedit CLI uses for its string-setting
	// flags. pflag has no variable-arity flag type, so the pair is
	// pulled out of os.Args before cobra ever parses them.
	setVersion, rest, err := extractSetVersionArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "rcedit:", err)
		os.Exit(1)
	}
	f.setVersion = setVersion
	root.SetArgs(rest)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rcedit:", err)
		os.Exit(1)
	}
}

// extractSetVersionArgs scans args for "--set-version" occurrences and
// consumes the two tokens that follow each as a NAME/VALUE pair,
// returning the pairs found and the remaining args with those tokens
// removed so cobra never sees them.
func extractSetVersionArgs(args []string) ([][2]string, []string, error) {
	var pairs [][2]string
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] != "--set-version" {
			rest = append(rest, args[i])
			continue
		}
		if i+2 >= len(args) {
			return nil, nil, fmt.Errorf("--set-version wants NAME VALUE: %w", pe.ErrUsage)
		}
		pairs = append(pairs, [2]string{args[i+1], args[i+2]})
		i += 2
	}
	return pairs, rest, nil
}

func run(input, output string, f flags) error {
	if f.console && f.gui {
		return fmt.Errorf("--console and --gui are mutually exclusive: %w", pe.ErrUsage)
	}
	if f.iconPath != "" && f.noIcon {
		return fmt.Errorf("--icon and --no-icon are mutually exclusive: %w", pe.ErrUsage)
	}

	opts := pe.Options{Verbose: f.verbose}
	if f.verbose {
		opts.Logger = log.Verbose()
	}

	if f.console {
		v := pe.SubsystemConsole
		opts.Subsystem = &v
	}
	if f.gui {
		v := pe.SubsystemGUI
		opts.Subsystem = &v
	}

	if f.noIcon {
		opts.RemoveIcon = true
	}
	if f.iconPath != "" {
		data, err := os.ReadFile(f.iconPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.iconPath, err)
		}
		opts.IconData = data
	}

	if f.fileVersion != "" {
		v, err := parseVersion(f.fileVersion)
		if err != nil {
			return err
		}
		opts.FileVersion = &v
	}
	if f.productVersion != "" {
		v, err := parseVersion(f.productVersion)
		if err != nil {
			return err
		}
		opts.ProductVersion = &v
	}

	if len(f.setVersion) > 0 || len(f.deleteVersion) > 0 {
		opts.SetVersionStrings = map[string]string{}
		for _, pair := range f.setVersion {
			opts.SetVersionStrings[pair[0]] = pair[1]
		}
		opts.DeleteVersionStrings = f.deleteVersion
	}

	if err := filecopy.Copy(input, output); err != nil {
		return err
	}

	rw, err := ioboundary.Open(output)
	if err != nil {
		return err
	}

	if err := pe.Run(rw, opts); err != nil {
		rw.Close()
		return err
	}
	if err := rw.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, errors.Join(pe.ErrIO, err))
	}
	return nil
}

// parseVersion accepts 1-4 dotted decimal components in [0, 65535],
// filling any missing trailing components with zero.
func parseVersion(s string) ([4]uint16, error) {
	var out [4]uint16
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return out, fmt.Errorf("version %q must have 1-4 dotted components: %w", s, pe.ErrUsage)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return out, fmt.Errorf("version component %q: %w", p, pe.ErrUsage)
		}
		out[i] = uint16(n)
	}
	return out, nil
}
