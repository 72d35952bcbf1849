package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: booksite <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Build the site from an XHTML book")
	fmt.Fprintln(w, "  check      Verify the sidebar navigator of a built site")
	fmt.Fprintln(w, "  watch      Rebuild whenever the book changes")
	fmt.Fprintln(w, "  init       Write a starter booksite.yaml")
	fmt.Fprintln(w, "  doctor     Check Chrome and external tools")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'booksite help <command>' for details on a specific command.")
}

func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -s, --source <dir>        Directory holding the .xhtml book")
	fmt.Fprintln(w, "  -o, --output <dir>        Directory receiving the site")
	fmt.Fprintln(w, "      --index <name>        Landing page (default index.xhtml)")
	fmt.Fprintln(w)
}

func printBuildFlags(w io.Writer) {
	printSiteFlags(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -w, --workers <n>         Pages built at once (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout, e.g. 30s, 2m")
	fmt.Fprintln(w, "      --math <s>            Math renderer: native, command")
	fmt.Fprintln(w, "      --highlight           Syntax-highlight code blocks")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding embedded assets")
	fmt.Fprintln(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and per-page details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  BOOKSITE_CONFIG, BOOKSITE_SOURCE_DIR, BOOKSITE_OUTPUT_DIR,")
	fmt.Fprintln(w, "  BOOKSITE_ASSET_PATH, BOOKSITE_TIMEOUT, BOOKSITE_WORKERS, BOOKSITE_BROWSER")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: booksite build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site: copy assets, transform every page, write stylesheets.")
	fmt.Fprintln(w)
	printBuildFlags(w)
	printCommonFlags(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: booksite watch [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build once, then rebuild after changes in the source directory.")
	fmt.Fprintln(w, "Stops on Ctrl+C.")
	fmt.Fprintln(w)
	printBuildFlags(w)
	printCommonFlags(w)
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: booksite check [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report sidebar links to missing anchors. With --browser, scroll every")
	fmt.Fprintln(w, "page in headless Chrome and compare the shipped script with the model.")
	fmt.Fprintln(w, "Exits 5 when defects are found.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check:")
	fmt.Fprintln(w, "  -d, --dir <dir>           Site directory (default output.dir)")
	fmt.Fprintln(w, "      --browser             Replay scrolling in headless Chrome")
	fmt.Fprintln(w, "      --samples <n>         Anchors scrolled to per page (0 = all)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout, e.g. 30s, 2m")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: booksite doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the external tools the config needs, and the system.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: booksite init [path] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write a starter config (default booksite.yaml).")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing file")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: booksite version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: booksite help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}
