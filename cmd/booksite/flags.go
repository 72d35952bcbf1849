package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags locate the book and the generated site.
type siteFlags struct {
	source    string
	output    string
	indexPage string
}

// buildFlags holds flags for the build and watch commands.
type buildFlags struct {
	common    commonFlags
	site      siteFlags
	workers   int
	timeout   string
	assetPath string
	highlight bool
	math      string // math renderer: native or command
}

// checkFlags holds flags for the check command.
type checkFlags struct {
	common  commonFlags
	dir     string
	browser bool
	samples int
	timeout string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// initFlags holds flags for the init command.
type initFlags struct {
	site  siteFlags
	force bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSiteFlags adds source and output flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVarP(&f.source, "source", "s", "", "directory holding the .xhtml book")
	fs.StringVarP(&f.output, "output", "o", "", "directory receiving the site")
	fs.StringVar(&f.indexPage, "index", "", "landing page file name (default index.xhtml)")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse wraps flag errors with ErrUsage. flag.ErrHelp is returned as is.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

// parseBuildFlags parses build and watch command flags.
func parseBuildFlags(name string, args []string, w io.Writer) (*buildFlags, error) {
	f := &buildFlags{}
	usage := printBuildUsage
	if name == "watch" {
		usage = printWatchUsage
	}
	fs := newFlagSet(name, w, usage)

	addSiteFlags(fs, &f.site)
	fs.IntVarP(&f.workers, "workers", "w", 0, "pages built at once (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "build timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded assets")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax-highlight code blocks")
	fs.StringVar(&f.math, "math", "", "math renderer: native, command")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseCheckFlags parses check command flags.
func parseCheckFlags(args []string, w io.Writer) (*checkFlags, error) {
	f := &checkFlags{}
	fs := newFlagSet("check", w, printCheckUsage)

	fs.StringVarP(&f.dir, "dir", "d", "", "site directory (default output.dir)")
	fs.BoolVar(&f.browser, "browser", false, "replay scrolling in headless Chrome")
	fs.IntVar(&f.samples, "samples", 0, "anchors scrolled to per page (0 = all)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "check timeout (e.g., 30s, 2m)")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", w, printDoctorUsage)

	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseInitFlags parses init command flags and returns the target path.
func parseInitFlags(args []string, w io.Writer) (*initFlags, string, error) {
	f := &initFlags{}
	fs := newFlagSet("init", w, printInitUsage)

	addSiteFlags(fs, &f.site)
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", ErrUsage, err)
	}
	switch fs.NArg() {
	case 0:
		return f, defaultConfigFile, nil
	case 1:
		return f, fs.Arg(0), nil
	default:
		return nil, "", fmt.Errorf("%w: init takes at most one path", ErrUsage)
	}
}
