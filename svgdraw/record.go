package svgdraw

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// ErrAllocation is returned by a Recorder configured to fail.
var ErrAllocation = errors.New("svgdraw: allocation refused")

// Recorder is a Backend and a Canvas which records the operations
// it receives as text, and counts the natives it allocates and
// releases. It is useful to debug and test the construction of
// trees.
type Recorder struct {
	// Calls is the log of canvas operations.
	Calls []string

	// FailAfter, if positive, makes the FailAfter-th allocation
	// (and the following ones) fail.
	FailAfter int

	Allocated, Released int
	// DoubleReleases counts the natives released more than once,
	// UseAfterRelease the canvas operations using a released native.
	DoubleReleases, UseAfterRelease int

	natives []*recordedNative
}

type recordedNative struct {
	r        *Recorder
	id       int
	kind     string
	released bool

	Path  svgpath.Path
	Paint *svgpaint.Paint
	Image image.Image
}

func (n *recordedNative) Release() {
	if n.released {
		n.r.DoubleReleases++
		return
	}
	n.released = true
	n.r.Released++
}

func (n *recordedNative) String() string { return fmt.Sprintf("%s#%d", n.kind, n.id) }

// Live returns the number of natives allocated and not yet released.
func (r *Recorder) Live() int { return r.Allocated - r.Released }

// Reset clears the call log.
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

// Log returns the call log, one operation per line.
func (r *Recorder) Log() string { return strings.Join(r.Calls, "\n") }

func (r *Recorder) alloc(kind string) (*recordedNative, error) {
	if r.FailAfter > 0 && r.Allocated+1 >= r.FailAfter {
		return nil, ErrAllocation
	}
	r.Allocated++
	n := &recordedNative{r: r, id: len(r.natives), kind: kind}
	r.natives = append(r.natives, n)
	return n, nil
}

func (r *Recorder) NewPath(p svgpath.Path, rule svgpath.FillRule) (Native, error) {
	n, err := r.alloc("path")
	if err != nil {
		return nil, err
	}
	n.Path = p
	return n, nil
}

func (r *Recorder) NewPaint(p *svgpaint.Paint) (Native, error) {
	n, err := r.alloc("paint")
	if err != nil {
		return nil, err
	}
	n.Paint = p
	return n, nil
}

func (r *Recorder) NewImage(img image.Image) (Native, error) {
	n, err := r.alloc("image")
	if err != nil {
		return nil, err
	}
	n.Image = img
	return n, nil
}

// name returns the description of a native, checking it is still alive.
func (r *Recorder) name(n Native) string {
	if n == nil {
		return "nil"
	}
	rn, ok := n.(*recordedNative)
	if !ok {
		return fmt.Sprintf("%T", n)
	}
	if rn.released {
		r.UseAfterRelease++
	}
	return rn.String()
}

func (r *Recorder) record(format string, args ...interface{}) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) Save()                  { r.record("save") }
func (r *Recorder) SaveLayer(paint Native) { r.record("saveLayer %s", r.name(paint)) }
func (r *Recorder) Restore()               { r.record("restore") }

func (r *Recorder) Concat(m svgpath.Matrix2D) {
	r.record("concat %g %g %g %g %g %g", m.A, m.B, m.C, m.D, m.E, m.F)
}

func (r *Recorder) ClipRect(rect svgpath.Rect, antialias bool) {
	r.record("clipRect %g %g %g %g", rect.X, rect.Y, rect.W, rect.H)
}

func (r *Recorder) ClipPath(path Native, antialias bool) { r.record("clipPath %s", r.name(path)) }

func (r *Recorder) DrawPath(path Native, paint Native) {
	r.record("drawPath %s %s", r.name(path), r.name(paint))
}

func (r *Recorder) DrawImage(img Native, src, dst svgpath.Rect, paint Native) {
	r.record("drawImage %s %g %g %g %g", r.name(img), dst.X, dst.Y, dst.W, dst.H)
}

// Count returns the number of recorded operations starting with `prefix`.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
