package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"leadcrm/internal/domain/leadimport"
	"leadcrm/internal/pkg/dberr"

	"github.com/spf13/cobra"
)

type importOptions struct {
	file   string
	maps   []string
	as     string
	dryRun bool
}

func newImportCmd(open opener) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import leads from a CSV or XLSX file",
		Long: "Runs the same two-step wizard as the API. Without --map the mapping is " +
			"guessed from the header row.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := parseMapping(opts.maps)
			if err != nil {
				return err
			}

			a, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var userID int64
			if opts.as != "" {
				u, err := a.Users.GetByUsername(ctx, opts.as)
				if err != nil {
					if dberr.IsNotFound(err) {
						return fmt.Errorf("--as: user %q not found", opts.as)
					}
					return err
				}
				userID = u.ID
			}

			f, err := os.Open(opts.file)
			if err != nil {
				return err
			}
			defer f.Close()

			up, err := a.Import.Upload(ctx, userID, filepath.Base(opts.file), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "read %d rows, columns: %s\n", up.RowCount, strings.Join(up.Columns, ", "))

			if mapping == nil {
				mapping = up.SuggestedMapping
				printMapping(out, mapping)
			}

			if opts.dryRun {
				defer func() { _ = a.Import.Discard(ctx, up.Token) }()
				plan, err := a.Import.Prepare(ctx, up.Token, mapping)
				if err != nil {
					return reportImportError(out, err)
				}
				fmt.Fprintf(out, "dry run: %d leads ready, nothing written\n", len(plan.Leads))
				return nil
			}

			res, err := a.Import.Commit(ctx, userID, up.Token, mapping)
			if err != nil {
				return reportImportError(out, err)
			}
			fmt.Fprintln(out, res.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Path to a .csv or .xlsx file (required)")
	cmd.Flags().StringArrayVar(&opts.maps, "map", nil, "field=Column, repeatable")
	cmd.Flags().StringVar(&opts.as, "as", "", "Record the import as this username")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate only")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// parseMapping turns field=Column pairs into a Mapping. No pairs means nil.
func parseMapping(pairs []string) (leadimport.Mapping, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := leadimport.Mapping{}
	for _, p := range pairs {
		field, column, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --map %q, want field=Column", p)
		}
		if !leadimport.IsField(field) {
			return nil, fmt.Errorf("unknown field %q, want one of: %s", field, strings.Join(leadimport.AllFields(), ", "))
		}
		m[field] = strings.TrimSpace(column)
	}
	return m, nil
}

func printMapping(w io.Writer, m leadimport.Mapping) {
	fmt.Fprintln(w, "using suggested mapping:")
	for _, f := range leadimport.AllFields() {
		col := m[f]
		if col == "" {
			col = "-"
		}
		fmt.Fprintf(w, "  %-12s <- %s\n", f, col)
	}
}

func reportImportError(w io.Writer, err error) error {
	var rowErr *leadimport.RowValidationError
	if errors.As(err, &rowErr) {
		for _, r := range rowErr.Rows {
			fields := make([]string, 0, len(r.Fields))
			for f := range r.Fields {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Fprintf(w, "row %d: %s: %s\n", r.Row, f, r.Fields[f])
			}
		}
	}
	return err
}
