package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func newHistoryCommand(out io.Writer) *ffcli.Command {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")
	svc := newServiceFlags(fs)

	return &ffcli.Command{
		Name:       "history",
		ShortUsage: "compose history [flags] <list|export|import|delete|clear>",
		Options:    commandOptions(),
		ShortHelp:  "inspect and manage the run history",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			{
				Name:       "list",
				ShortUsage: "compose history list",
				ShortHelp:  "list records, newest first",
				Exec: func(ctx context.Context, _ []string) error {
					return historyList(ctx, svc, out)
				},
			},
			{
				Name:       "export",
				ShortUsage: "compose history export [file]",
				ShortHelp:  "write the history as CSV to a file or stdout",
				Exec: func(ctx context.Context, args []string) error {
					return historyExport(ctx, svc, out, args)
				},
			},
			{
				Name:       "import",
				ShortUsage: "compose history import <file>",
				ShortHelp:  "append the records of a CSV file",
				Exec: func(ctx context.Context, args []string) error {
					return historyImport(ctx, svc, out, args)
				},
			},
			{
				Name:       "delete",
				ShortUsage: "compose history delete <timestamp>",
				ShortHelp:  "delete one record",
				Exec: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return errors.New("delete: exactly one timestamp is required")
					}
					a, err := svc.open(ctx)
					if err != nil {
						return err
					}
					defer a.Close()
					return a.History.Delete(ctx, args[0])
				},
			},
			{
				Name:       "clear",
				ShortUsage: "compose history clear",
				ShortHelp:  "delete every record",
				Exec: func(ctx context.Context, _ []string) error {
					a, err := svc.open(ctx)
					if err != nil {
						return err
					}
					defer a.Close()
					return a.History.Clear(ctx)
				},
			},
		},
	}
}

func historyList(ctx context.Context, svc *serviceFlags, out io.Writer) error {
	a, err := svc.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.History.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tMODEL\tLENGTH\tTEMPO\tGENRE\tMELODY\tPAD\tPROMPT")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%ds\t%d\t%s\t%s\t%s\t%s\n",
			r.Timestamp, r.Model, r.Length, r.Tempo, r.Genre, r.InstrumentName, r.PadInstrumentName, r.Prompt)
	}
	return w.Flush()
}

func historyExport(ctx context.Context, svc *serviceFlags, out io.Writer, args []string) error {
	a, err := svc.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		return a.History.Export(ctx, out)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := a.History.Export(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func historyImport(ctx context.Context, svc *serviceFlags, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("import: exactly one file is required")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	a, err := svc.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.History.Import(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d records\n", n)
	return nil
}
