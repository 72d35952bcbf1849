// Package assets provides the stylesheet and navigator script shipped with
// every generated site.
//
// EmbeddedLoader serves the copies compiled into the binary.
// FilesystemLoader reads an override directory, and AssetResolver tries the
// override first, falling back to the embedded copy when a file is absent.
//
// An override directory mirrors the embedded layout:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # site stylesheets (e.g., book.css)
//	└── scripts/
//	    └── {name}.js            # client scripts (e.g., toc.js)
//
// Names are plain identifiers without dots or separators. FilesystemLoader
// also resolves symlinks and rejects files outside basePath.
package assets
