package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/Conceptual-Machines/magda-compose/internal/app"
	"github.com/Conceptual-Machines/magda-compose/internal/config"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
	"github.com/Conceptual-Machines/magda-compose/internal/services"
)

// Build flags
var version = ""
var commit = ""

const envPrefix = "COMPOSE"

var errNoRequest = apperrors.InputError("no prompt or request flags provided")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	_ = godotenv.Load()

	cmd := newCommand(os.Stdout)
	if err := cmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func newCommand(out io.Writer) *ffcli.Command {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "compose [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(out),
			newGenerateCommand(out),
			newResolveCommand(out),
			newHistoryCommand(out),
		},
	}
}

func newVersionCommand(out io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "compose version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			fields := []string{v}
			if commit != "" {
				fields = append(fields, commit)
			}
			fmt.Fprintln(out, strings.Join(fields, " "))
			return nil
		},
	}
}

// requestFlags collects the structured overrides of an arrangement request.
// Only flags that were actually set become overrides.
type requestFlags struct {
	fs *flag.FlagSet

	length           int
	tempo            int
	temperature      float64
	model            string
	genre            string
	preset           string
	title            string
	melodyInstrument int
	bassInstrument   int
	chordInstrument  int
	padInstrument    int
	drums            bool
	arpeggio         bool
	songStructure    bool
}

func newRequestFlags(fs *flag.FlagSet) *requestFlags {
	f := &requestFlags{fs: fs}
	fs.IntVar(&f.length, "length", 0, "length in seconds")
	fs.IntVar(&f.tempo, "tempo", 0, "base tempo in bpm")
	fs.Float64Var(&f.temperature, "temperature", 0, "sampling temperature (0.1-2.0)")
	fs.StringVar(&f.model, "model", "", "melody model")
	fs.StringVar(&f.genre, "genre", "", "genre keyword")
	fs.StringVar(&f.preset, "preset", "", "preset name")
	fs.StringVar(&f.title, "title", "", "output title")
	fs.IntVar(&f.melodyInstrument, "melody-instrument", 0, "melody GM program")
	fs.IntVar(&f.bassInstrument, "bass-instrument", 0, "bass GM program")
	fs.IntVar(&f.chordInstrument, "chord-instrument", 0, "chord GM program")
	fs.IntVar(&f.padInstrument, "pad-instrument", 0, "pad GM program")
	fs.BoolVar(&f.drums, "drums", false, "add drums")
	fs.BoolVar(&f.arpeggio, "arpeggio", false, "add arpeggio")
	fs.BoolVar(&f.songStructure, "song-structure", false, "prepend an intro section")
	return f
}

var requestFlagNames = []string{
	"length", "tempo", "temperature", "model", "genre", "preset", "title",
	"melody-instrument", "bass-instrument", "chord-instrument", "pad-instrument",
	"drums", "arpeggio", "song-structure",
}

// empty reports whether neither a prompt nor any request flag was given
func (f *requestFlags) empty(args []string) bool {
	if strings.TrimSpace(strings.Join(args, " ")) != "" {
		return false
	}
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	for _, name := range requestFlagNames {
		if set[name] {
			return false
		}
	}
	return true
}

func (f *requestFlags) request(args []string) models.ArrangementRequest {
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	var o models.Overrides
	if set["length"] {
		o.Length = &f.length
	}
	if set["tempo"] {
		o.Tempo = &f.tempo
	}
	if set["temperature"] {
		o.Temperature = &f.temperature
	}
	if set["model"] {
		o.Model = &f.model
	}
	if set["genre"] {
		o.Genre = &f.genre
	}
	if set["melody-instrument"] {
		o.MelodyInstrument = &f.melodyInstrument
	}
	if set["bass-instrument"] {
		o.BassInstrument = &f.bassInstrument
	}
	if set["chord-instrument"] {
		o.ChordInstrument = &f.chordInstrument
	}
	if set["pad-instrument"] {
		o.PadInstrument = &f.padInstrument
	}
	if set["drums"] {
		o.AddDrums = &f.drums
	}
	if set["arpeggio"] {
		o.AddArpeggio = &f.arpeggio
	}
	if set["song-structure"] {
		o.SongStructure = &f.songStructure
	}
	o.Preset = f.preset
	o.Title = f.title

	return models.ArrangementRequest{
		Prompt:    strings.Join(args, " "),
		Overrides: o,
	}
}

func commandOptions() []ff.Option {
	return []ff.Option{
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix(envPrefix),
	}
}

// serviceFlags override the environment configuration of the services
type serviceFlags struct {
	outputDir      string
	historyBackend string
	historyFile    string
	databaseURL    string
}

func newServiceFlags(fs *flag.FlagSet) *serviceFlags {
	f := &serviceFlags{}
	fs.StringVar(&f.outputDir, "output-dir", "", "output directory (default $OUTPUT_DIR)")
	fs.StringVar(&f.historyBackend, "history-backend", "", "history backend: sqlite, postgres or file")
	fs.StringVar(&f.historyFile, "history-file", "", "history file for the file backend")
	fs.StringVar(&f.databaseURL, "database-url", "", "history database DSN")
	return f
}

func (f *serviceFlags) config() *config.Config {
	cfg := config.Load()
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.historyBackend != "" {
		cfg.HistoryBackend = f.historyBackend
	}
	if f.historyFile != "" {
		cfg.HistoryFile = f.historyFile
	}
	if f.databaseURL != "" {
		cfg.DatabaseURL = f.databaseURL
	}
	return cfg
}

func (f *serviceFlags) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, f.config())
}

func newGenerateCommand(out io.Writer) *ffcli.Command {
	cmd := "generate"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	req := newRequestFlags(fs)
	svc := newServiceFlags(fs)
	var noRender bool
	fs.BoolVar(&noRender, "no-render", false, "write the MIDI file only")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("compose %s [flags] <prompt...>", cmd),
		Options:    commandOptions(),
		ShortHelp:  "generate an arrangement from a prompt",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if req.empty(args) {
				return errNoRequest
			}
			a, err := svc.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			arrangement, err := a.Arrangements.Arrange(ctx, req.request(args), services.ArrangeOptions{NoRender: noRender})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "midi: %s\n", filepath.Join(a.Arrangements.OutputDir(), arrangement.MIDIFile))
			if arrangement.WAVFile != "" {
				fmt.Fprintf(out, "wav:  %s\n", filepath.Join(a.Arrangements.OutputDir(), arrangement.WAVFile))
			}
			fmt.Fprintf(out, "notes: %d, tempo: %d bpm, length: %ds, model: %s\n",
				arrangement.NoteCount, arrangement.Request.Tempo, arrangement.Request.Length, arrangement.Request.Model)
			return nil
		},
	}
}

func newResolveCommand(out io.Writer) *ffcli.Command {
	cmd := "resolve"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	req := newRequestFlags(fs)
	svc := newServiceFlags(fs)

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("compose %s [flags] <prompt...>", cmd),
		Options:    commandOptions(),
		ShortHelp:  "print the resolved parameters, sections and progression as JSON",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if req.empty(args) {
				return errNoRequest
			}
			cfg := svc.config()
			// resolution never touches history
			cfg.HistoryBackend = config.HistoryFile
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			preview, err := a.Arrangements.Preview(req.request(args))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(preview)
		},
	}
}
