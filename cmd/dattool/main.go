// dattool is a CLI utility for inspecting and converting GTA .dat files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/dattool/internal/batch"
	"github.com/Faultbox/dattool/internal/config"
	"github.com/Faultbox/dattool/internal/convert"
	"github.com/Faultbox/dattool/internal/logger"
	"github.com/Faultbox/dattool/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "inspect", "i":
		cmdInspect(args)
	case "convert", "c":
		cmdConvert(args)
	case "batch", "b":
		cmdBatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dattool - GTA chase/nodes .dat toolkit

Usage:
  dattool <command> [options]

Commands:
  inspect [-n limit] <file.dat|dir>...   Show .dat file structure
  convert [-o out.dat] <chase.dat>       Convert one chase file to nodes
  batch [options] <input_dir> <out_dir>  Convert every .dat in a folder

Conversion options (convert, batch):
  -mult f     Coordinate multiplier (default from config, 8.0)
  -area n     area_id stamped into every node
  -width n    width stamped into every node
  -type n     node_type stamped into every node
  -flags n    flags stamped into every node
  -backup     Back up existing outputs before overwriting
  -threads n  Worker count for batch (clamped to 1..16)
  -save       Persist these settings to the config file

Examples:
  dattool inspect chase.dat
  dattool convert -o nodes.dat chase.dat
  dattool batch -threads 8 ./dats ./converted`)
}

// sharedFlags registers the settings flags every command understands on
// fs and returns the hook that folds explicitly-set values into cfg.
func sharedFlags(fs *flag.FlagSet) (apply func(*config.Config)) {
	fs.String("config", "", "Path to config file")
	fs.Bool("debug", false, "Enable debug logging")
	mult := fs.Float64("mult", 8.0, "Coordinate multiplier")
	area := fs.Int("area", 0, "area_id for every node record")
	width := fs.Int("width", 0, "width for every node record")
	nodeType := fs.Int("type", 0, "node_type for every node record")
	nodeFlags := fs.Int("flags", 0, "flags for every node record")
	backup := fs.Bool("backup", true, "Back up existing outputs")
	threads := fs.Int("threads", 4, "Batch worker count")
	save := fs.Bool("save", false, "Persist settings to the config file")

	return func(cfg *config.Config) {
		// Only flags the user actually set override the config file.
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "mult":
				cfg.Conversion.Multiplier = *mult
			case "area":
				cfg.Conversion.AreaID = uint16(*area)
			case "width":
				cfg.Conversion.Width = uint16(*width)
			case "type":
				cfg.Conversion.NodeType = uint8(*nodeType)
			case "flags":
				cfg.Conversion.Flags = uint8(*nodeFlags)
			case "backup":
				cfg.Conversion.Backup = *backup
			case "threads":
				cfg.Batch.Threads = *threads
			case "debug":
				cfg.Logging.Level = "debug"
			}
		})

		if *save {
			if err := cfg.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: saving config: %v\n", err)
			}
		}
	}
}

// loadConfig loads config for a parsed flag set and initializes logging.
func loadConfig(fs *flag.FlagSet, apply func(*config.Config)) *config.Config {
	cfg, err := config.Load(fs.Lookup("config").Value.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	apply(cfg)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(1)
	}

	return cfg
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	limit := fs.Int("n", -1, "Limit position preview to N entries (0 = none)")
	apply := sharedFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dattool inspect <file.dat|dir>...")
		os.Exit(1)
	}

	cfg := loadConfig(fs, apply)
	defer logger.Sync()

	preview := cfg.Inspect.MaxPreview
	if *limit >= 0 {
		preview = *limit
	}

	failed := 0
	for _, path := range collectDatFiles(fs.Args()) {
		if err := inspectOne(path, preview); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func inspectOne(path string, preview int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	info := formats.Inspect(data)
	fmt.Printf("%s: %s\n", path, info)

	if info.Kind != formats.KindChase || preview == 0 {
		return nil
	}

	positions, err := formats.DecodePositions(data, info.Variant)
	if err != nil {
		return err
	}
	for i, pos := range positions {
		if i >= preview {
			fmt.Printf("  ... %d more\n", len(positions)-preview)
			break
		}
		fmt.Printf("  %d: %s\n", i, pos)
	}
	return nil
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	out := fs.String("o", "", "Output path (default <stem>_nodes.dat beside the source)")
	apply := sharedFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dattool convert [-o out.dat] <chase.dat>")
		os.Exit(1)
	}

	cfg := loadConfig(fs, apply)
	defer logger.Sync()

	src := fs.Arg(0)
	dst := *out
	if dst == "" {
		dst = defaultOutputPath(src, filepath.Dir(src))
	}

	outcome := convert.File(src, dst, convert.Options{
		Params:     cfg.Conversion.Params(),
		Multiplier: cfg.Conversion.Multiplier,
		Backup:     cfg.Conversion.Backup,
	})

	fmt.Println(outcome.Message)
	if !outcome.Success {
		os.Exit(1)
	}
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	apply := sharedFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: dattool batch <input_dir> <output_dir>")
		os.Exit(1)
	}

	cfg := loadConfig(fs, apply)
	defer logger.Sync()

	inDir, outDir := fs.Arg(0), fs.Arg(1)

	sources, err := filepath.Glob(filepath.Join(inDir, "*.dat"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(sources)
	if len(sources) == 0 {
		fmt.Fprintf(os.Stderr, "No .dat files found in %s\n", inDir)
		os.Exit(1)
	}

	pairs := make([]batch.Pair, len(sources))
	for i, src := range sources {
		pairs[i] = batch.Pair{Source: src, Dest: defaultOutputPath(src, outDir)}
	}

	opts := convert.Options{
		Params:     cfg.Conversion.Params(),
		Multiplier: cfg.Conversion.Multiplier,
		Backup:     cfg.Conversion.Backup,
	}

	fmt.Printf("Starting batch conversion: %d files, threads=%d\n",
		len(pairs), batch.ClampWorkers(cfg.Batch.Threads))

	failed := 0
	for ev := range batch.Run(pairs, opts, cfg.Batch.Threads) {
		switch ev.Kind {
		case batch.EventProgress:
			fmt.Fprintf(os.Stderr, "Progress: %d/%d\n", ev.Completed, ev.Total)
		case batch.EventResult:
			fmt.Println(ev.Outcome.Message)
			if !ev.Outcome.Success {
				failed++
			}
		case batch.EventDone:
			fmt.Printf("Batch done. %d files, %d failed.\n", ev.Total, failed)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// collectDatFiles expands directories into their sorted *.dat contents.
func collectDatFiles(args []string) []string {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			matches, _ := filepath.Glob(filepath.Join(arg, "*.dat"))
			sort.Strings(matches)
			files = append(files, matches...)
			continue
		}
		files = append(files, arg)
	}
	return files
}

// defaultOutputPath names the converted file <stem>_nodes.dat in dir.
func defaultOutputPath(src, dir string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(dir, stem+"_nodes.dat")
}
