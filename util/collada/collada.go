// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package collada decodes the triangle geometry of Collada (.dae) documents.
// Everything but geometry is skipped.
package collada

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxValues bounds any array read from a document.
const MaxValues = 1 << 22

// package errors
var (
	ErrSyntax   = errors.New("malformed collada document")
	ErrTooLarge = errors.New("collada array too large")
	ErrNotFound = errors.New("collada element not found")
)

// Decode parses a document.
func Decode(contents []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(contents, &doc); err != nil {
		if errors.Is(err, ErrTooLarge) || errors.Is(err, ErrSyntax) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return &doc, nil
}

// Document is the part of a Collada document this package reads.
type Document struct {
	Geometries []Geometry `xml:"library_geometries>geometry"`
}

// Geometry is a named mesh.
type Geometry struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	Mesh Mesh   `xml:"mesh"`
}

// Mesh holds the data arrays and the triangles indexing into them.
type Mesh struct {
	Sources   []Source  `xml:"source"`
	Vertices  Vertices  `xml:"vertices"`
	Triangles Triangles `xml:"triangles"`
}

// Source returns the source a "#id" link points at.
func (m *Mesh) Source(link string) (*Source, error) {
	id := strings.TrimPrefix(link, "#")
	for i := range m.Sources {
		if m.Sources[i].ID == id {
			return &m.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("source %q: %w", id, ErrNotFound)
}

// Positions finds the position array the triangles' VERTEX input refers to.
// Documents that skip the vertices element are matched by the usual
// "-positions" id suffix.
func (m *Mesh) Positions() (*Source, error) {
	vertex, ok := m.Triangles.Input("VERTEX")
	if !ok {
		return nil, fmt.Errorf("triangles VERTEX input: %w", ErrNotFound)
	}
	if vertex.Source != "" && strings.TrimPrefix(vertex.Source, "#") == m.Vertices.ID {
		position, ok := m.Vertices.Input("POSITION")
		if !ok {
			return nil, fmt.Errorf("vertices %q POSITION input: %w", m.Vertices.ID, ErrNotFound)
		}
		return m.Source(position.Source)
	}
	for i := range m.Sources {
		if strings.HasSuffix(m.Sources[i].ID, "-positions") {
			return &m.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("position source: %w", ErrNotFound)
}

// Source is a named float array.
type Source struct {
	ID     string `xml:"id,attr"`
	Floats Floats `xml:"float_array"`
}

// Floats is a float_array element.
type Floats struct {
	ID   string
	Data []float32
}

// UnmarshalXML parses the whitespace separated values.
func (f *Floats) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			f.ID = attr.Value
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}

	fields := strings.Fields(raw)
	if len(fields) > MaxValues {
		return fmt.Errorf("float_array %q: %w: %d values", f.ID, ErrTooLarge, len(fields))
	}
	f.Data = make([]float32, 0, len(fields))
	for i, field := range fields {
		num, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return fmt.Errorf("float_array %q value %d: %w: %v", f.ID, i, ErrSyntax, err)
		}
		f.Data = append(f.Data, float32(num))
	}
	return nil
}

// Vertices names the inputs that make up a vertex.
type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Input returns the input with the given semantic.
func (v *Vertices) Input(semantic string) (Input, bool) {
	return findInput(v.Inputs, semantic)
}

// Triangles is a triangle list. Index holds one tuple per vertex,
// each with one entry per input offset.
type Triangles struct {
	Count    int
	Material string
	Inputs   []Input
	Index    []int
}

// Input returns the input with the given semantic.
func (t *Triangles) Input(semantic string) (Input, bool) {
	return findInput(t.Inputs, semantic)
}

// Stride is the number of index entries per vertex.
func (t *Triangles) Stride() int {
	stride := 0
	for _, input := range t.Inputs {
		if int(input.Offset)+1 > stride {
			stride = int(input.Offset) + 1
		}
	}
	return stride
}

// Vertices returns the number of vertices the index list describes,
// checking it against the declared triangle count.
func (t *Triangles) Vertices() (int, error) {
	stride := t.Stride()
	if stride == 0 {
		return 0, fmt.Errorf("triangles without inputs: %w", ErrSyntax)
	}
	if len(t.Index)%stride != 0 {
		return 0, fmt.Errorf("triangles: %w: %d indices do not split into tuples of %d", ErrSyntax, len(t.Index), stride)
	}
	vertices := len(t.Index) / stride
	if vertices != 3*t.Count {
		return 0, fmt.Errorf("triangles: %w: %d vertices for %d triangles", ErrSyntax, vertices, t.Count)
	}
	return vertices, nil
}

// UnmarshalXML reads the attributes, inputs and the index list.
func (t *Triangles) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "count":
			num, err := strconv.Atoi(attr.Value)
			if err != nil || num < 0 || num > MaxValues {
				return fmt.Errorf("triangles count %q: %w", attr.Value, ErrSyntax)
			}
			t.Count = num
		case "material":
			t.Material = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "input":
				var input Input
				if err := d.DecodeElement(&input, &el); err != nil {
					return err
				}
				t.Inputs = append(t.Inputs, input)
			case "p":
				if t.Index, err = decodeIndex(d, el); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if el == start.End() {
				return nil
			}
		}
	}
}

func decodeIndex(d *xml.Decoder, start xml.StartElement) ([]int, error) {
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return nil, err
	}
	fields := strings.Fields(raw)
	if len(fields) > MaxValues {
		return nil, fmt.Errorf("triangles index: %w: %d values", ErrTooLarge, len(fields))
	}
	index := make([]int, 0, len(fields))
	for i, field := range fields {
		num, err := strconv.Atoi(field)
		if err != nil || num < 0 {
			return nil, fmt.Errorf("triangles index %d %q: %w", i, field, ErrSyntax)
		}
		index = append(index, num)
	}
	return index, nil
}

// Input binds a semantic to a source at an offset of the index tuple.
type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   uint   `xml:"offset,attr"`
}

func findInput(inputs []Input, semantic string) (Input, bool) {
	for _, input := range inputs {
		if input.Semantic == semantic {
			return input, true
		}
	}
	return Input{}, false
}
