package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ geometry from r. Only v, vt and f statements are used;
// polygons with more than three corners are split into a triangle fan.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			mesh.Vertices = append(mesh.Vertices, math3d.V3(vals[0], vals[1], vals[2]))
		case "vt":
			vals, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", lineNo, err)
			}
			mesh.UVs = append(mesh.UVs, math3d.V2(vals[0], vals[1]))
		case "f":
			if err := mesh.addPolygon(fields[1:]); err != nil {
				return nil, fmt.Errorf("line %d: face: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(mesh.Faces) == 0 {
		return nil, ErrNoTriangles
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	vals := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

type objCorner struct {
	v, uv int
}

func (m *Mesh) addPolygon(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("need at least 3 corners, got %d", len(fields))
	}

	corners := make([]objCorner, len(fields))
	for i, field := range fields {
		c, err := m.parseCorner(field)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		m.Faces = append(m.Faces, Face{
			V:  [3]int{a.v, b.v, c.v},
			UV: [3]int{a.uv, b.uv, c.uv},
		})
	}
	return nil
}

// parseCorner accepts v, v/vt, v/vt/vn and v//vn.
func (m *Mesh) parseCorner(field string) (objCorner, error) {
	parts := strings.Split(field, "/")

	v, err := resolveIndex(parts[0], len(m.Vertices))
	if err != nil {
		return objCorner{}, fmt.Errorf("vertex index %q: %w", field, err)
	}

	uv := -1
	if len(parts) > 1 && parts[1] != "" {
		uv, err = resolveIndex(parts[1], len(m.UVs))
		if err != nil {
			return objCorner{}, fmt.Errorf("uv index %q: %w", field, err)
		}
	}
	return objCorner{v: v, uv: uv}, nil
}

// resolveIndex converts a 1-based or negative OBJ index to a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case idx > 0 && idx <= count:
		return idx - 1, nil
	case idx < 0 && -idx <= count:
		return count + idx, nil
	default:
		return 0, fmt.Errorf("index %d out of range for %d elements", idx, count)
	}
}
