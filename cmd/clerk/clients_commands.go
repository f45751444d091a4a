package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"clerk/internal/clients"
	"clerk/internal/faults"
)

func newClientsCommand(ctx *commandContext) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage the client registry",
	}
	clientsCmd.AddCommand(newClientsListCommand(ctx))
	clientsCmd.AddCommand(newClientsAddCommand(ctx))
	clientsCmd.AddCommand(newClientsRemoveCommand(ctx))
	clientsCmd.AddCommand(newClientsImportCommand(ctx))
	clientsCmd.AddCommand(newClientsMappingCommand(ctx))
	return clientsCmd
}

type clientView struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Folder      string `json:"folder"`
}

func newClientsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered clients in match-priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg, true)
			if err != nil {
				return err
			}
			reg, err := ctx.loadRegistry(cfg, logger)
			if err != nil {
				return err
			}

			folders := reg.FolderMapping()
			views := make([]clientView, 0, reg.Len())
			for _, c := range reg.Clients() {
				views = append(views, clientView{
					Name:        c.String(),
					DisplayName: clients.DisplayName(c),
					Folder:      folders[c],
				})
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No clients registered")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for i, v := range views {
				rows = append(rows, []string{fmt.Sprint(i + 1), v.DisplayName, v.Folder})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Client", "Folder"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print clients as JSON")
	return cmd
}

func newClientsMappingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mapping",
		Short: "Show the folder each client's documents are filed under",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg, true)
			if err != nil {
				return err
			}
			reg, err := ctx.loadRegistry(cfg, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if reg.Len() == 0 {
				fmt.Fprintln(out, "No clients registered")
				return nil
			}
			folders := reg.FolderMapping()
			for _, c := range reg.Clients() {
				fmt.Fprintf(out, "%s → %s\n", clients.DisplayName(c), folders[c])
			}
			return nil
		},
	}
}

func newClientsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Register one or more clients",
		Long: "Register clients by \"First Last\" or \"First Middle Last\".\n\n" +
			"Unquoted words form a single name (clerk clients add John Doe); quote each\n" +
			"name to add several at once (clerk clients add \"John Doe\" \"Marie Jane Smith\").",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg, true)
			if err != nil {
				return err
			}

			names, err := namesFromArgs(args)
			if err != nil {
				return err
			}
			var added []clients.Client
			var duplicates []string
			reg, err := clients.Update(cfg.Paths.ClientsFile, logger, func(reg *clients.Registry) error {
				for _, name := range names {
					c, err := reg.Add(name)
					switch {
					case errors.Is(err, clients.ErrDuplicate):
						duplicates = append(duplicates, name)
					case err != nil:
						return faults.Wrap(faults.ErrValidation, "clients", "add", "", err)
					default:
						added = append(added, c)
					}
				}
				if len(added) == 0 {
					return faults.Wrap(faults.ErrValidation, "clients", "add",
						fmt.Sprintf("already registered: %s", strings.Join(duplicates, ", ")), clients.ErrDuplicate)
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			folders := reg.FolderMapping()
			for _, c := range added {
				fmt.Fprintf(out, "Added %s → %s\n", clients.DisplayName(c), folders[c])
			}
			for _, name := range duplicates {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: already registered\n", name)
			}
			return nil
		},
	}
}

func newClientsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>...",
		Short: "Remove one or more clients",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg, true)
			if err != nil {
				return err
			}

			names, err := namesFromArgs(args)
			if err != nil {
				return err
			}
			var removed []clients.Client
			var missing []string
			_, err = clients.Update(cfg.Paths.ClientsFile, logger, func(reg *clients.Registry) error {
				for _, name := range names {
					c, err := clients.Parse(name)
					if err != nil {
						return faults.Wrap(faults.ErrValidation, "clients", "remove", "", err)
					}
					if reg.Remove(c) {
						removed = append(removed, c)
					} else {
						missing = append(missing, name)
					}
				}
				if len(removed) == 0 {
					return faults.Wrap(faults.ErrValidation, "clients", "remove",
						fmt.Sprintf("not registered: %s", strings.Join(missing, ", ")), nil)
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range removed {
				fmt.Fprintf(out, "Removed %s\n", clients.DisplayName(c))
			}
			for _, name := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: not registered\n", name)
			}
			return nil
		},
	}
}

func newClientsImportCommand(ctx *commandContext) *cobra.Command {
	var (
		row        int
		column     int
		sheet      string
		delimiter  string
		skipHeader bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Register every name in one column or row of a CSV, TSV or XLSX file",
		Long: "Register every name in one column (default: the first) or one row of a\n" +
			"table. Rows and columns are numbered from 1. Names already registered are\n" +
			"skipped; cells that are not two or three words are reported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := clients.ImportOptions{
				Orientation: clients.Column,
				Index:       column - 1,
				SkipHeader:  skipHeader,
				Sheet:       strings.TrimSpace(sheet),
			}
			if cmd.Flags().Changed("row") {
				opts.Orientation = clients.Row
				opts.Index = row - 1
			}
			if opts.Index < 0 {
				return faults.Wrap(faults.ErrValidation, "clients", "import", "--row and --column start at 1", nil)
			}
			if cmd.Flags().Changed("delimiter") {
				r, err := parseDelimiter(delimiter)
				if err != nil {
					return err
				}
				opts.Delimiter = r
			}

			logger, err := ctx.logger(cmd, cfg, true)
			if err != nil {
				return err
			}
			var report clients.ImportReport
			reg, err := clients.Update(cfg.Paths.ClientsFile, logger, func(reg *clients.Registry) error {
				var err error
				report, err = clients.Import(reg, args[0], opts)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			folders := reg.FolderMapping()
			for _, c := range report.Added {
				fmt.Fprintf(out, "Added %s → %s\n", clients.DisplayName(c), folders[c])
			}
			fmt.Fprintf(out, "Imported %d clients (%d already registered, %d invalid)\n",
				len(report.Added), report.Duplicates, len(report.Invalid))
			for _, cell := range report.Invalid {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s %d: %q: %v\n",
					cellAxis(opts.Orientation), cell.Position+1, cell.Value, cell.Err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&row, "row", 1, "Read names across this row")
	cmd.Flags().IntVar(&column, "column", 1, "Read names down this column")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX worksheet (default: the first)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "Field separator for text files (a single character or \"tab\")")
	cmd.Flags().BoolVar(&skipHeader, "skip-header", false, "Ignore the first cell of the column or row")
	cmd.MarkFlagsMutuallyExclusive("row", "column")
	return cmd
}

// namesFromArgs treats unquoted words as one name and quoted arguments as
// one name each. Mixing the two is ambiguous and rejected.
func namesFromArgs(args []string) ([]string, error) {
	var quoted int
	for _, arg := range args {
		if strings.ContainsAny(strings.TrimSpace(arg), " \t") {
			quoted++
		}
	}
	switch quoted {
	case 0:
		return []string{strings.Join(args, " ")}, nil
	case len(args):
		return args, nil
	}
	return nil, faults.Wrap(faults.ErrValidation, "clients", "parse arguments",
		fmt.Sprintf("mixed quoted and unquoted names %q; quote every name, e.g. \"John Doe\" \"Ann Lee\"", args), nil)
}

func parseDelimiter(value string) (rune, error) {
	switch value {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, faults.Wrap(faults.ErrValidation, "clients", "import",
			fmt.Sprintf("--delimiter must be a single character (got %q)", value), nil)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

// cellAxis names the position an invalid cell was found at: a column
// import walks rows and vice versa.
func cellAxis(o clients.Orientation) string {
	if o == clients.Row {
		return "column"
	}
	return "row"
}
