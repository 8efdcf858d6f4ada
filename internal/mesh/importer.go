package mesh

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Layout selects the column convention of a node/element file pair.
type Layout int

const (
	// LayoutTetGen reads TetGen .node/.ele files: a node header, an optional
	// element header, "index x y z" node rows and "index a b c d" element
	// rows. The index base is taken from the first node row.
	LayoutTetGen Layout = iota
	// LayoutBlender reads exports from the Blender tetrahedralizer: a node
	// header, Z-up coordinates stored as "x z y" with an optional leading
	// index, and a headerless 0-based element list.
	LayoutBlender
)

func (l Layout) String() string {
	switch l {
	case LayoutTetGen:
		return "tetgen"
	case LayoutBlender:
		return "blender"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// ParseLayout maps a layout name to its Layout.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(name) {
	case "", "tetgen":
		return LayoutTetGen, nil
	case "blender":
		return LayoutBlender, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// Element is the four particle indices of one tetrahedron, 0-based.
type Element [4]int

// NodeSet is the result of reading a node file.
type NodeSet struct {
	Positions []mgl64.Vec3
	// Base is the index of the first node as written in the file. Element
	// indices are shifted by it.
	Base    int
	Dropped int
}

// Mesh is a raw tetrahedral mesh: rest positions plus element indices.
type Mesh struct {
	Nodes    []mgl64.Vec3
	Elements []Element
}

// Importer reads node/element files. Malformed records are dropped with a
// warning on Logger; unreadable files produce empty results.
type Importer struct {
	Layout Layout
	Logger *slog.Logger
}

func NewImporter(layout Layout, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{Layout: layout, Logger: logger}
}

// Import reads both files of a mesh.
func (im *Importer) Import(nodePath, elementPath string) Mesh {
	nodes := im.ReadNodes(nodePath)
	elements := im.ReadElements(elementPath, nodes.Base)
	im.logger().Info("mesh imported",
		"nodes", len(nodes.Positions),
		"elements", len(elements),
		"layout", im.Layout.String())
	return Mesh{Nodes: nodes.Positions, Elements: elements}
}

func (im *Importer) ReadNodes(path string) NodeSet {
	f, err := os.Open(path)
	if err != nil {
		im.logger().Error("cannot open node file", "path", path, "err", err)
		return NodeSet{}
	}
	defer f.Close()
	return im.ParseNodes(f, path)
}

func (im *Importer) ReadElements(path string, base int) []Element {
	f, err := os.Open(path)
	if err != nil {
		im.logger().Error("cannot open element file", "path", path, "err", err)
		return nil
	}
	defer f.Close()
	return im.ParseElements(f, path, base)
}

// ParseNodes reads node records from r. The first record is always a header.
func (im *Importer) ParseNodes(r io.Reader, source string) NodeSet {
	var set NodeSet
	baseSeen := false
	headerSeen := false

	im.scan(r, source, func(line int, fields []string) {
		if !headerSeen {
			headerSeen = true
			return
		}

		var index int
		var coords []string
		switch {
		case im.Layout == LayoutBlender && len(fields) == 3:
			coords = fields
		case len(fields) >= 4:
			i, err := strconv.Atoi(fields[0])
			if err != nil {
				im.drop(source, line, "non-numeric node index", err)
				set.Dropped++
				return
			}
			index = i
			coords = fields[1:4]
		default:
			im.drop(source, line, fmt.Sprintf("node record has %d fields", len(fields)), nil)
			set.Dropped++
			return
		}

		var v [3]float64
		for k := range v {
			f, err := strconv.ParseFloat(coords[k], 64)
			if err != nil {
				im.drop(source, line, "non-numeric coordinate", err)
				set.Dropped++
				return
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				im.drop(source, line, "non-finite coordinate", nil)
				set.Dropped++
				return
			}
			v[k] = f
		}

		p := mgl64.Vec3{v[0], v[1], v[2]}
		if im.Layout == LayoutBlender {
			p = mgl64.Vec3{v[0], v[2], v[1]}
		}

		if !baseSeen && im.Layout == LayoutTetGen {
			set.Base = index
		}
		baseSeen = true
		set.Positions = append(set.Positions, p)
	})

	return set
}

// ParseElements reads element records from r and shifts every index by base.
// A TetGen header ("count nodesPerTet attrs") is optional and recognised by
// its three fields.
func (im *Importer) ParseElements(r io.Reader, source string, base int) []Element {
	var elements []Element
	first := im.Layout == LayoutTetGen

	im.scan(r, source, func(line int, fields []string) {
		if first {
			first = false
			if len(fields) == 3 {
				return
			}
		}

		var ids []string
		switch {
		case im.Layout == LayoutBlender && len(fields) == 4:
			ids = fields
		case len(fields) >= 5:
			ids = fields[1:5]
		default:
			im.drop(source, line, fmt.Sprintf("element record has %d fields", len(fields)), nil)
			return
		}

		var e Element
		for k := range e {
			v, err := strconv.Atoi(ids[k])
			if err != nil {
				im.drop(source, line, "non-numeric element index", err)
				return
			}
			e[k] = v - base
		}
		elements = append(elements, e)
	})

	return elements
}

// scan feeds every non-blank, non-comment record of r to fn with its
// 1-based line number.
func (im *Importer) scan(r io.Reader, source string, fn func(line int, fields []string)) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		fn(line, fields)
	}
	if err := sc.Err(); err != nil {
		im.logger().Error("read failed", "source", source, "line", line, "err", err)
	}
}

func (im *Importer) drop(source string, line int, reason string, err error) {
	attrs := []any{"source", source, "line", line, "reason", reason}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	im.logger().Warn("dropping malformed record", attrs...)
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger == nil {
		return slog.Default()
	}
	return im.Logger
}
