// Package logfields holds the canonical log field names shared by the build,
// check and watch code paths.
package logfields

import (
	"time"

	"go.uber.org/zap"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPage       = "page"
	KeyPath       = "path"
	KeyAnchor     = "anchor"
	KeyLinks      = "links"
	KeyAnchors    = "anchors"
	KeyMath       = "math"
	KeyCode       = "code"
	KeySidebar    = "sidebar"
	KeyStage      = "stage"
	KeyWorkers    = "workers"
	KeyDurationMS = "duration_ms"
	KeyEvent      = "event"
	KeyCommand    = "command"
	KeyDefects    = "defects"
)

func Page(name string) zap.Field  { return zap.String(KeyPage, name) }
func Path(p string) zap.Field     { return zap.String(KeyPath, p) }
func Anchor(id string) zap.Field  { return zap.String(KeyAnchor, id) }
func Links(n int) zap.Field       { return zap.Int(KeyLinks, n) }
func Anchors(n int) zap.Field     { return zap.Int(KeyAnchors, n) }
func Math(n int) zap.Field        { return zap.Int(KeyMath, n) }
func Code(n int) zap.Field        { return zap.Int(KeyCode, n) }
func Sidebar(on bool) zap.Field   { return zap.Bool(KeySidebar, on) }
func Stage(name string) zap.Field { return zap.String(KeyStage, name) }
func Workers(n int) zap.Field     { return zap.Int(KeyWorkers, n) }
func Command(c string) zap.Field  { return zap.String(KeyCommand, c) }
func Defects(n int) zap.Field     { return zap.Int(KeyDefects, n) }

// Event logs a value that names itself through String.
func Event(ev interface{ String() string }) zap.Field { return zap.Stringer(KeyEvent, ev) }

// Duration logs d in fractional milliseconds.
func Duration(d time.Duration) zap.Field {
	return zap.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}
