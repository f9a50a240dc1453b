package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/nibzard/taskbase/internal/query"
	"github.com/nibzard/taskbase/internal/selection"
)

// queryCommand prints the engine query compiled from a selection file.
func (a *app) queryCommand(args []string) error {
	fs := a.subFlags("query")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := a.selectionArg(fs.Args())
	if err != nil {
		return err
	}
	def, err := selection.Load(path)
	if err != nil {
		return fmt.Errorf("loading selection %s: %w", path, err)
	}
	fmt.Fprintln(a.stdout, query.Compile(*def))
	return nil
}

// validateCommand reports every problem in a selection file.
func (a *app) validateCommand(args []string) error {
	fs := a.subFlags("validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := a.selectionArg(fs.Args())
	if err != nil {
		return err
	}

	if _, err := selection.Load(path); err != nil {
		var cfgErr *selection.Error
		if errors.As(err, &cfgErr) && len(cfgErr.Details) > 1 {
			fmt.Fprintf(a.stdout, "%s: %s\n", path, cfgErr.Kind)
			for _, d := range cfgErr.Details {
				fmt.Fprintf(a.stdout, "  - %s\n", d)
			}
		} else {
			fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
		}
		return fmt.Errorf("%s is not a valid selection file", path)
	}
	fmt.Fprintf(a.stdout, "%s: ok\n", path)
	return nil
}

// fmtCommand prints the canonical encoding of a selection file, writes it
// back with -w, or fails with --check when the file is not canonical.
func (a *app) fmtCommand(args []string) error {
	fs := a.subFlags("fmt")
	write := fs.BoolP("write", "w", false, "Write the canonical form back to the file")
	check := fs.Bool("check", false, "Exit with an error if the file is not canonical")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := a.selectionArg(fs.Args())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading selection %s: %w", path, err)
	}
	def, err := selection.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing selection %s: %w", path, err)
	}
	canonical, err := selection.Serialize(*def)
	if err != nil {
		return err
	}

	switch {
	case *check:
		if !bytes.Equal(data, canonical) {
			return fmt.Errorf("%s is not formatted", path)
		}
		return nil
	case *write:
		if bytes.Equal(data, canonical) {
			return nil
		}
		if err := selection.Save(path, *def); err != nil {
			return err
		}
		a.logger.Info("formatted", "path", path)
		return nil
	}
	_, err = a.stdout.Write(canonical)
	return err
}
