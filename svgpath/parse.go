package svgpath

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

// number of arguments expected by each command
var argCounts = [...]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6,
	'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

// pathCursor stores the state of the path data compiler
type pathCursor struct {
	path Path

	// current point, start of the current subpath and
	// last control point (for the smooth commands)
	curX, curY     float64
	startX, startY float64
	ctrlX, ctrlY   float64

	lastCmd byte // upper case, 0 at the start
	hasPath bool // a MoveTo has been emitted
}

// ParsePathData compiles the content of a `d` attribute.
// As required for SVG path data, on error the path
// compiled up to the faulty command is returned along with the error.
func ParsePathData(d string) (Path, error) {
	var c pathCursor
	err := c.compile([]byte(d))
	return c.path, err
}

func isNumberStart(b byte) bool {
	return b >= '0' && b <= '9' || b == '.' || b == '-' || b == '+'
}

func (c *pathCursor) compile(data []byte) error {
	var args [7]float64
	i := skipCommaWhitespace(data)
	if i < len(data) && (data[i] != 'M' && data[i] != 'm') {
		return fmt.Errorf("path data must start with a moveto, got %q", data[i])
	}
	var cmd byte
	for {
		i += skipCommaWhitespace(data[i:])
		if i >= len(data) {
			return nil
		}
		if !isNumberStart(data[i]) {
			cmd = data[i]
			i++
			i += skipCommaWhitespace(data[i:])
		} else if cmd == 0 || cmd == 'z' || cmd == 'Z' {
			return fmt.Errorf("unexpected number at position %d", i+1)
		}

		upper := cmd
		if 'a' <= cmd && cmd <= 'z' {
			upper -= 'a' - 'A'
		}
		if int(upper) >= len(argCounts) || (argCounts[upper] == 0 && upper != 'Z') {
			return fmt.Errorf("unknown path command %q at position %d", cmd, i)
		}
		nbArgs := argCounts[upper]
		for j := 0; j < nbArgs; j++ {
			if upper == 'A' && (j == 3 || j == 4) {
				// flags may be written without separators
				if i < len(data) && (data[i] == '0' || data[i] == '1') {
					args[j] = float64(data[i] - '0')
					i++
				} else {
					return fmt.Errorf("invalid arc flag at position %d", i+1)
				}
			} else {
				f, n := strconv.ParseFloat(data[i:])
				if n == 0 {
					return fmt.Errorf("expected %d arguments for command %q at position %d", nbArgs, cmd, i+1)
				}
				args[j] = f
				i += n
			}
			i += skipCommaWhitespace(data[i:])
		}

		c.addSeg(cmd, upper, args[:nbArgs])

		// implicit lineto after a moveto
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		}
	}
}

// addSeg emits the operation for one command with its arguments.
func (c *pathCursor) addSeg(cmd, upper byte, args []float64) {
	rel := cmd != upper
	// make the point arguments absolute
	if rel {
		switch upper {
		case 'H':
			args[0] += c.curX
		case 'V':
			args[0] += c.curY
		case 'A':
			args[5] += c.curX
			args[6] += c.curY
		default:
			for k := 0; k+1 < len(args); k += 2 {
				args[k] += c.curX
				args[k+1] += c.curY
			}
		}
	}

	// a command other than moveto starting a subpath after a closepath
	if upper != 'M' && upper != 'Z' && c.lastCmd == 'Z' {
		c.path.Start(toFixedP(c.curX, c.curY))
	}

	switch upper {
	case 'M':
		c.curX, c.curY = args[0], args[1]
		c.startX, c.startY = c.curX, c.curY
		c.path.Start(toFixedP(c.curX, c.curY))
		c.hasPath = true
	case 'Z':
		if c.hasPath && c.lastCmd != 'Z' {
			c.path.Stop(true)
		}
		c.curX, c.curY = c.startX, c.startY
	case 'L':
		c.lineTo(args[0], args[1])
	case 'H':
		c.lineTo(args[0], c.curY)
	case 'V':
		c.lineTo(c.curX, args[0])
	case 'Q':
		c.ctrlX, c.ctrlY = args[0], args[1]
		c.curX, c.curY = args[2], args[3]
		c.path.QuadBezier(toFixedP(c.ctrlX, c.ctrlY), toFixedP(c.curX, c.curY))
	case 'T':
		cx, cy := c.curX, c.curY
		if c.lastCmd == 'Q' || c.lastCmd == 'T' {
			cx, cy = 2*c.curX-c.ctrlX, 2*c.curY-c.ctrlY
		}
		c.ctrlX, c.ctrlY = cx, cy
		c.curX, c.curY = args[0], args[1]
		c.path.QuadBezier(toFixedP(cx, cy), toFixedP(c.curX, c.curY))
	case 'C':
		c.ctrlX, c.ctrlY = args[2], args[3]
		c.curX, c.curY = args[4], args[5]
		c.path.CubeBezier(toFixedP(args[0], args[1]), toFixedP(c.ctrlX, c.ctrlY), toFixedP(c.curX, c.curY))
	case 'S':
		cx, cy := c.curX, c.curY
		if c.lastCmd == 'C' || c.lastCmd == 'S' {
			cx, cy = 2*c.curX-c.ctrlX, 2*c.curY-c.ctrlY
		}
		c.ctrlX, c.ctrlY = args[0], args[1]
		c.curX, c.curY = args[2], args[3]
		c.path.CubeBezier(toFixedP(cx, cy), toFixedP(c.ctrlX, c.ctrlY), toFixedP(c.curX, c.curY))
	case 'A':
		c.arcTo(args)
	}
	c.lastCmd = upper
}

func (c *pathCursor) lineTo(x, y float64) {
	c.curX, c.curY = x, y
	c.path.Line(toFixedP(x, y))
}

// arcTo handles the endpoint parametrization of elliptical arcs,
// with out of range radii corrected as per the SVG implementation notes.
func (c *pathCursor) arcTo(args []float64) {
	rx, ry := math.Abs(args[0]), math.Abs(args[1])
	x, y := args[5], args[6]
	if x == c.curX && y == c.curY {
		return // omitted
	}
	if rx == 0 || ry == 0 {
		c.lineTo(x, y)
		return
	}
	rot := args[2] * math.Pi / 180
	cx, cy := findEllipseCenter(&rx, &ry, rot, c.curX, c.curY, x, y, args[4] == 0, args[3] == 0)
	points := [7]float64{rx, ry, args[2], args[3], args[4], x, y}
	c.curX, c.curY = c.path.addArc(points[:], cx, cy, c.curX, c.curY)
}
