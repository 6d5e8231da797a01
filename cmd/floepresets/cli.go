// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/beorn7/perks/quantile"
	sigar "github.com/cloudfoundry/gosigar"
	"github.com/codegangsta/cli"
	shlex "github.com/flynn-archive/go-shlex"
	log "github.com/golang/glog"
	"github.com/peterh/liner"

	"github.com/westerndigitalcorporation/floe/internal/core"
	"github.com/westerndigitalcorporation/floe/internal/notify"
	"github.com/westerndigitalcorporation/floe/internal/params"
	"github.com/westerndigitalcorporation/floe/internal/preset"
	"github.com/westerndigitalcorporation/floe/internal/presetcache"
	"github.com/westerndigitalcorporation/floe/internal/presetserver"
	"github.com/westerndigitalcorporation/floe/internal/state"
)

var usage = `
	floepresets inspects, converts and indexes Floe presets.

	Run one command:

		floepresets [--config <file>] <subcommand> [<flags>...] [<args>...]

	or start an interpreter with:

		floepresets [--config <file>] shell

	--config names a JSON file whose fields override the preset server's
	default configuration (see presetserver.Config). It's used by "scan".
	`

const mb = 1 << 20

// presetCli runs subcommands, either once or from a shell.
type presetCli struct {
	// the command line framework we'll use to launch commands.
	app *cli.App
	// Configuration for preset servers started by "scan".
	cfg presetserver.Config
	// Errors reported by the preset server.
	notes *notify.Notifications
	// True if we are running a shell.
	inShell bool
	// What the process exits with.
	exitCode int
}

func newPresetCli() *presetCli {
	p := &presetCli{cfg: presetserver.DefaultConfig, notes: &notify.Notifications{}}
	app := cli.NewApp()
	app.Name = "floepresets"
	app.Usage = usage
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "JSON file overriding the preset server configuration",
		},
		cli.StringFlag{
			Name:  "cache",
			Usage: "preset cache file (overrides the configuration)",
		},
	}

	abbreviatedFlag := cli.BoolFlag{
		Name:  "abbreviated, a",
		Usage: "only decode what the preset browser needs",
	}

	app.Commands = []cli.Command{
		{
			Name:      "info",
			Aliases:   []string{"i"},
			Usage:     "Prints what a preset file contains.",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "all",
					Usage: "print every parameter, not only those that differ from the default",
				},
			},
			Action: p.cmdInfo,
		},
		{
			Name:      "convert",
			Usage:     "Converts a preset of any format to the current one.",
			ArgsUsage: "<in> <out.floe-preset> | --stdout <in.mirage-preset>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "stdout",
					Usage: "write the converted Mirage preset to stdout",
				},
			},
			Action: p.cmdConvert,
		},
		{
			Name:      "default",
			Usage:     "Writes a preset with every parameter at its default.",
			ArgsUsage: "<out.floe-preset>",
			Action:    p.cmdDefault,
		},
		{
			Name:      "randomise",
			Aliases:   []string{"randomize"},
			Usage:     "Writes a preset with random parameter values.",
			ArgsUsage: "<out.floe-preset>",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "seed",
					Usage: "random seed (0 picks one from the clock)",
				},
			},
			Action: p.cmdRandomise,
		},
		{
			Name:      "scan",
			Usage:     "Indexes preset folders and prints what was found.",
			ArgsUsage: "<dir> [<dir>...]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name", Usage: "only list presets whose name contains this"},
				cli.StringSliceFlag{Name: "tag", Usage: "only list presets with this tag"},
				cli.StringSliceFlag{Name: "library", Usage: "only list presets using this library"},
				cli.StringSliceFlag{Name: "author", Usage: "only list presets by this author"},
				cli.StringFlag{Name: "format", Usage: "only list presets of this format (floe or mirage)"},
				cli.DurationFlag{Name: "timeout", Usage: "how long to wait for the scan", Value: time.Minute},
			},
			Action: p.cmdScan,
		},
		{
			Name:      "bench",
			Usage:     "Measures how long presets under a folder take to load.",
			ArgsUsage: "<dir>",
			Flags: []cli.Flag{
				abbreviatedFlag,
				cli.IntFlag{Name: "iterations, n", Usage: "loads per file", Value: 10},
			},
			Action: p.cmdBench,
		},
		{
			Name:      "export-cache",
			Usage:     "Writes a compressed copy of the preset cache.",
			ArgsUsage: "<out>",
			Action:    p.cmdExportCache,
		},
		{
			Name:      "import-cache",
			Usage:     "Replaces the preset cache with an exported copy.",
			ArgsUsage: "<in>",
			Action:    p.cmdImportCache,
		},
		{
			Name:   "shell",
			Usage:  "Starts a shell for interaction.",
			Action: p.cmdShell,
		},
	}
	app.Before = p.beforeSubcommandRun
	p.app = app

	// By default 'HelpName' will be the parent command name + command name.
	// Overwrite 'HelpName' to be command name only.
	for i := range p.app.Commands {
		p.app.Commands[i].HelpName = p.app.Commands[i].Name
	}
	return p
}

// run starts a command specified by users.
func (p *presetCli) run(args []string) error {
	return p.app.Run(args)
}

// stop frees up all resources.
func (p *presetCli) stop() {
	for _, n := range p.notes.Snapshot() {
		log.Warningf("unresolved %s error for %s: %s", n.Category, n.ID, n.Message)
	}
}

// fail logs an error and makes the process exit with an error status.
func (p *presetCli) fail(format string, args ...interface{}) {
	log.Errorf(format, args...)
	p.exitCode = 1
}

// args checks the number of positional arguments.
func (p *presetCli) args(c *cli.Context, min, max int) ([]string, bool) {
	args := []string(c.Args())
	if len(args) < min || (max >= 0 && len(args) > max) {
		p.fail("%s: wrong number of arguments; usage: %s %s", c.Command.Name, c.Command.Name, c.Command.ArgsUsage)
		return nil, false
	}
	return args, true
}

// This function will be called before any subcommand gets started.
func (p *presetCli) beforeSubcommandRun(c *cli.Context) error {
	if file := c.GlobalString("config"); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("couldn't open the provided config file: %s", err)
		}
		defer f.Close()
		cfg := presetserver.DefaultConfig
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return fmt.Errorf("failed to decode the config file: %s", err)
		}
		p.cfg = cfg
	}
	if cache := c.GlobalString("cache"); cache != "" {
		p.cfg.CachePath = cache
	}
	return p.cfg.Validate()
}

// cmdInfo implements the "info" subcommand.
func (p *presetCli) cmdInfo(c *cli.Context) {
	args, ok := p.args(c, 1, 1)
	if !ok {
		return
	}
	s, err := preset.LoadPresetFile(args[0], false)
	if err != nil {
		p.fail("%s", err)
		return
	}
	format, _ := core.FileFormatForPath(args[0])
	printSnapshot(os.Stdout, s, format, c.Bool("all"))
}

func printSnapshot(w io.Writer, s *state.Snapshot, format core.FileFormat, all bool) {
	fmt.Fprintf(w, "format:      %s\n", format)
	fmt.Fprintf(w, "author:      %s\n", s.Metadata.Author)
	fmt.Fprintf(w, "description: %s\n", s.Metadata.Description)
	fmt.Fprintf(w, "tags:        %s\n", strings.Join(s.Metadata.Tags, ", "))
	libs := make([]string, 0)
	for _, l := range s.UsedLibraries() {
		libs = append(libs, string(l))
	}
	fmt.Fprintf(w, "libraries:   %s\n", strings.Join(libs, ", "))
	for i, inst := range s.Instruments {
		fmt.Fprintf(w, "layer %d:     %s\n", i+1, inst)
	}
	if s.IR != nil {
		fmt.Fprintf(w, "reverb IR:   %s\n", s.IR)
	}
	order := make([]string, len(s.FxOrder))
	for i, e := range s.FxOrder {
		order[i] = e.String()
	}
	fmt.Fprintf(w, "fx order:    %s\n", strings.Join(order, " > "))
	for i, m := range s.Macros {
		if len(m.Destinations) != 0 || m.Name != state.DefaultMacroName(i) {
			fmt.Fprintf(w, "macro %d:     %q, %d destinations\n", i+1, m.Name, len(m.Destinations))
		}
	}

	def := state.Default()
	for _, d := range params.All() {
		v := s.Param(d.Index)
		if !all && v == def.Param(d.Index) {
			continue
		}
		fmt.Fprintf(w, "  %-40s %s\n", d.Name, d.Format(v))
	}
}

// cmdConvert implements the "convert" subcommand.
func (p *presetCli) cmdConvert(c *cli.Context) {
	if c.Bool("stdout") {
		args, ok := p.args(c, 1, 1)
		if !ok {
			return
		}
		data, err := preset.ConvertMirage(args[0])
		if err != nil {
			p.fail("%s", err)
			return
		}
		os.Stdout.Write(data)
		return
	}

	args, ok := p.args(c, 2, 2)
	if !ok {
		return
	}
	s, err := preset.LoadPresetFile(args[0], false)
	if err != nil {
		p.fail("%s", err)
		return
	}
	if err := preset.SavePresetFile(args[1], s); err != nil {
		p.fail("%s", err)
		return
	}
	log.Infof("converted %s to %s", args[0], args[1])
}

// cmdDefault implements the "default" subcommand.
func (p *presetCli) cmdDefault(c *cli.Context) {
	args, ok := p.args(c, 1, 1)
	if !ok {
		return
	}
	s := &state.Snapshot{}
	preset.SetToDefaultState(s)
	if err := preset.SavePresetFile(args[0], s); err != nil {
		p.fail("%s", err)
	}
}

// cmdRandomise implements the "randomise" subcommand.
func (p *presetCli) cmdRandomise(c *cli.Context) {
	args, ok := p.args(c, 1, 1)
	if !ok {
		return
	}
	var rng *rand.Rand
	if seed := c.Int64("seed"); seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	s := state.Default()
	preset.RandomiseAllParameterValues(s, rng)
	if err := preset.SavePresetFile(args[0], s); err != nil {
		p.fail("%s", err)
	}
}

// cmdScan implements the "scan" subcommand.
func (p *presetCli) cmdScan(c *cli.Context) {
	args, ok := p.args(c, 1, -1)
	if !ok {
		return
	}
	q, err := queryFromFlags(c)
	if err != nil {
		p.fail("%s", err)
		return
	}

	cfg := p.cfg
	cfg.AlwaysScannedFolder = args[0]
	srv, err := presetserver.New(cfg, p.notes)
	if err != nil {
		p.fail("couldn't start preset server: %s", err)
		return
	}
	defer srv.Shutdown()
	srv.SetExtraScanFolders(args[1:])
	srv.StartScanningIfNeeded()

	start := time.Now()
	deadline := start.Add(c.Duration("timeout"))
	for {
		st := srv.Stats()
		if st.Roots == len(args) && st.ScannedRoots == st.Roots {
			break
		}
		if time.Now().After(deadline) {
			p.fail("scan didn't finish in %s", c.Duration("timeout"))
			return
		}
		time.Sleep(cfg.PollInterval)
	}
	log.Infof("scanned %d folders in %s", len(args), time.Since(start))

	snap := srv.BeginReadFolders(nil)
	defer srv.EndReadFolders()
	printCatalogue(os.Stdout, snap, q)
	for _, n := range p.notes.Snapshot() {
		p.fail("%s: %s", n.ID, n.Message)
	}
}

func queryFromFlags(c *cli.Context) (presetserver.Query, error) {
	q := presetserver.Query{
		Name:    c.String("name"),
		Tags:    c.StringSlice("tag"),
		Authors: c.StringSlice("author"),
	}
	for _, l := range c.StringSlice("library") {
		q.Libraries = append(q.Libraries, core.LibraryID(l))
	}
	switch f := c.String("format"); f {
	case "":
	case core.FileFormatFloe.String():
		q.Formats = q.Formats.With(core.FileFormatFloe)
	case core.FileFormatMirage.String():
		q.Formats = q.Formats.With(core.FileFormatMirage)
	default:
		return q, fmt.Errorf("%w: unknown format %q", core.ErrInvalidArgument.Error(), f)
	}
	return q, nil
}

func printCatalogue(w io.Writer, snap *presetserver.PresetsSnapshot, q presetserver.Query) {
	for _, root := range snap.Root.Children() {
		root.Walk(func(n *presetserver.FolderNode) {
			depth := strings.Count(n.Path(), "/") - strings.Count(root.Name, "/")
			count := 0
			if n.Folder != nil {
				count = len(n.Folder.Presets)
			}
			fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.DisplayName, count)
		})
	}
	fmt.Fprintf(w, "\npresets: %d  formats: %s\n", snap.NumPresets(), snap.Formats)
	fmt.Fprintf(w, "tags:    %s\n", strings.Join(snap.Tags, ", "))
	fmt.Fprintf(w, "authors: %s\n", strings.Join(snap.Authors, ", "))
	libs := make([]string, len(snap.Libraries))
	for i, l := range snap.Libraries {
		libs[i] = string(l)
	}
	fmt.Fprintf(w, "libraries: %s\n\n", strings.Join(libs, ", "))

	for _, m := range snap.Filter(q) {
		pr := m.Preset()
		fmt.Fprintf(w, "%-32s %-16s %s\n", pr.Name, pr.Author, m.Path())
	}
}

// cmdBench implements the "bench" subcommand.
func (p *presetCli) cmdBench(c *cli.Context) {
	args, ok := p.args(c, 1, 1)
	if !ok {
		return
	}
	var files []string
	err := filepath.WalkDir(args[0], func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if _, ok := core.FileFormatForPath(path); ok && !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		p.fail("%s", err)
		return
	}
	if len(files) == 0 {
		p.fail("no presets under %s", args[0])
		return
	}
	sort.Strings(files)

	abbreviated := c.Bool("abbreviated")
	iterations := c.Int("iterations")
	before := residentMB()
	objectives := map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}
	lat := quantile.NewTargeted(objectives)
	failed := 0
	start := time.Now()
	for i := 0; i < iterations; i++ {
		for _, f := range files {
			t := time.Now()
			if _, err := preset.LoadPresetFile(f, abbreviated); err != nil {
				if i == 0 {
					log.Errorf("%s", err)
				}
				failed++
				continue
			}
			lat.Insert(float64(time.Since(t)) / 1e6)
		}
	}
	total := time.Since(start)

	fmt.Printf("%d files x %d iterations in %s, %d failed loads\n", len(files), iterations, total, failed)
	fmt.Printf("latency ms: p50 %.3f  p90 %.3f  p99 %.3f\n", lat.Query(0.5), lat.Query(0.9), lat.Query(0.99))
	fmt.Printf("resident memory: %d MB before, %d MB after\n", before, residentMB())

	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		log.Errorf("failed to get memory info: %s", err)
		return
	}
	fmt.Printf("system memory: %d MB free of %d MB\n", mem.ActualFree/mb, mem.Total/mb)
}

func residentMB() uint64 {
	pm := sigar.ProcMem{}
	if err := pm.Get(os.Getpid()); err != nil {
		log.Errorf("failed to get process memory: %s", err)
		return 0
	}
	return pm.Resident / mb
}

// cmdExportCache implements the "export-cache" subcommand.
func (p *presetCli) cmdExportCache(c *cli.Context) {
	args, ok := p.args(c, 1, 1)
	if !ok {
		return
	}
	if p.cfg.CachePath == "" {
		p.fail("no cache configured; use --cache")
		return
	}
	cache, err := presetcache.Open(p.cfg.CachePath, 1)
	if err != nil {
		p.fail("%s", err)
		return
	}
	defer cache.Close()

	f, err := os.Create(args[0])
	if err != nil {
		p.fail("%s", err)
		return
	}
	if err := cache.Export(f); err != nil {
		f.Close()
		p.fail("export failed: %s", err)
		return
	}
	if err := f.Close(); err != nil {
		p.fail("%s", err)
		return
	}
	log.Infof("exported %d records to %s", cache.Len(), args[0])
}

// cmdImportCache implements the "import-cache" subcommand.
func (p *presetCli) cmdImportCache(c *cli.Context) {
	args, ok := p.args(c, 1, 1)
	if !ok {
		return
	}
	if p.cfg.CachePath == "" {
		p.fail("no cache configured; use --cache")
		return
	}
	f, err := os.Open(args[0])
	if err != nil {
		p.fail("%s", err)
		return
	}
	defer f.Close()
	if err := presetcache.Import(f, p.cfg.CachePath); err != nil {
		p.fail("import failed: %s", err)
	}
}

// cmdShell implements the "shell" subcommand.
func (p *presetCli) cmdShell(c *cli.Context) {
	p.inShell = true
	defer func() { p.inShell = false }()

	// Make cli not exit on errors.
	cli.OsExiter = func(int) {}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) (names []string) {
		for _, cmd := range p.app.Commands {
			if strings.HasPrefix(cmd.Name, l) {
				names = append(names, cmd.Name)
			}
		}
		return
	})
	defer line.Close()

	for {
		input, err := line.Prompt("(floe) ")
		if err != nil {
			if err != io.EOF {
				log.Errorf("error: %v", err)
			}
			return
		}

		// Split shell-style so paths with spaces can be quoted.
		args, err := shlex.Split(input)
		if err != nil {
			log.Errorf("error: %v", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return
		}
		if args[0] == "shell" {
			log.Errorf("already in a shell")
			continue
		}

		p.exitCode = 0
		if p.runCommand(c, args...) == nil && p.exitCode == 0 {
			line.AppendHistory(input)
		}
	}
}

// runCommand runs a command from the shell, keeping the global flags.
func (p *presetCli) runCommand(c *cli.Context, args ...string) error {
	cmdArgs := []string{"floepresets"}
	if cfg := c.GlobalString("config"); cfg != "" {
		cmdArgs = append(cmdArgs, "--config", cfg)
	}
	if cache := c.GlobalString("cache"); cache != "" {
		cmdArgs = append(cmdArgs, "--cache", cache)
	}
	cmdArgs = append(cmdArgs, args...)
	return p.run(cmdArgs)
}
