// Package booksite builds a static website from an XHTML book and checks
// the table-of-contents navigator it ships.
//
// # Quick Start
//
// Create a builder and build a site:
//
//	b, err := booksite.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := b.Build(ctx, booksite.Input{
//	    SourceDir: "book",
//	    OutputDir: "dist",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Pages), "pages")
//
// # Build Pipeline
//
// A build follows these stages:
//
//  1. Output layout: dist/, dist/js, dist/css and dist/css/fonts
//  2. Copy list: files and trees, or font subsets through pyftsubset
//  3. Embedded assets: js/toc.js (the navigator) and css/book.css
//  4. Pages: every .xhtml file of the source root, transformed concurrently
//  5. Stylesheets that depend on page content (math, highlighted code)
//
// Each page has legacy head scripts removed, its body wrapped in <main>,
// MathML rendered, code optionally highlighted with Chroma, and, except
// for the landing page, a sidebar built from the landing page's contents
// list inserted before <main>.
//
// # Configuration
//
// Use functional options to customize the builder:
//
//	b, err := booksite.NewBuilder(
//	    booksite.WithWorkers(4),
//	    booksite.WithHighlight(booksite.Highlight{Language: "scheme"}),
//	    booksite.WithMathCommand(booksite.MathCommand{Command: "mjx-render"}),
//	)
//
// # Checking a Site
//
// Checker binds every page's sidebar the way the navigator does and reports
// links to missing anchors. With CheckInput.Browser it also opens each page
// in headless Chrome (go-rod), runs the Go navigator model against the live
// layout next to the shipped script, and reports any disagreement on the
// highlighted link or the address fragment.
//
//	report, err := booksite.NewChecker().Check(ctx, booksite.CheckInput{
//	    Dir:     "dist",
//	    Browser: true,
//	})
//
// # Error Handling
//
// Errors wrap the sentinels in errors.go; use errors.Is to match them:
//
//	if errors.Is(err, booksite.ErrNoIndexPage) {
//	    // the source directory has no landing page
//	}
package booksite
