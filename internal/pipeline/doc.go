// Package pipeline rewrites book pages into their published form.
//
// Each XHTML page goes through the same stages:
//   - legacy head scripts are dropped, site stylesheets and scripts added
//   - body content is wrapped in <main>
//   - MathML islands are handed to a math renderer
//   - code blocks are optionally highlighted with chroma
//   - every page but the landing page gets the table-of-contents sidebar
//
// The sidebar is built once per build from the landing page's contents
// list and shared by all pages.
package pipeline
