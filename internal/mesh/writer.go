package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

// WriteNodes writes nodes in the TetGen .node layout, numbering from base.
func WriteNodes(w io.Writer, nodes []mgl64.Vec3, base int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 3 0 0\n", len(nodes))
	for i, p := range nodes {
		fmt.Fprintf(bw, "%d %s %s %s\n", i+base,
			strconv.FormatFloat(p.X(), 'g', -1, 64),
			strconv.FormatFloat(p.Y(), 'g', -1, 64),
			strconv.FormatFloat(p.Z(), 'g', -1, 64))
	}
	return bw.Flush()
}

// WriteElements writes elements in the TetGen .ele layout, shifting indices
// by base.
func WriteElements(w io.Writer, elements []Element, base int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 4 0\n", len(elements))
	for i, e := range elements {
		fmt.Fprintf(bw, "%d %d %d %d %d\n", i+base, e[0]+base, e[1]+base, e[2]+base, e[3]+base)
	}
	return bw.Flush()
}

// Save writes m as a TetGen pair at prefix.node and prefix.ele, 1-based.
func Save(prefix string, m Mesh) (nodePath, elementPath string, err error) {
	nodePath, elementPath = prefix+".node", prefix+".ele"

	if err := writeFile(nodePath, func(w io.Writer) error { return WriteNodes(w, m.Nodes, 1) }); err != nil {
		return "", "", err
	}
	if err := writeFile(elementPath, func(w io.Writer) error { return WriteElements(w, m.Elements, 1) }); err != nil {
		return "", "", err
	}
	return nodePath, elementPath, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
