package annotate

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ParseShapes parses a scripted shape description. Accepted forms:
//
//	line:X1,Y1,X2,Y2[:COLOR[:WIDTH]]
//	rect:X1,Y1,X2,Y2[:COLOR[:WIDTH]]
//	triangle:X1,Y1,X2,Y2[:COLOR[:WIDTH]]
//	circle:CX,CY,R[:COLOR[:WIDTH]]
//	free:X1,Y1,X2,Y2,...[:COLOR[:WIDTH]]   (one line shape per segment)
//	text:X,Y:MESSAGE
//	text:X,Y:COLOR:SIZE:MESSAGE   (when COLOR or SIZE is invalid the whole
//	                               remainder is the message)
func ParseShapes(desc string, style Style) ([]Shape, error) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(desc), ":")
	if !ok {
		return nil, fmt.Errorf("shape %q: missing coordinates", desc)
	}
	kind = strings.ToLower(kind)

	if kind == "text" {
		s, err := parseText(rest, style)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", desc, err)
		}
		return []Shape{s}, nil
	}

	parts := strings.Split(rest, ":")
	if len(parts) > 3 {
		return nil, fmt.Errorf("shape %q: too many fields", desc)
	}
	coords, err := parseInts(parts[0])
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", desc, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if style.Color, err = ParseColor(parts[1]); err != nil {
			return nil, fmt.Errorf("shape %q: %w", desc, err)
		}
	}
	if len(parts) > 2 {
		w, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("shape %q: invalid width %q", desc, parts[2])
		}
		style.Width = w
	}

	base := Shape{Color: style.Color, Width: style.Width, Size: style.FontSize}
	switch kind {
	case "line", "rect", "triangle":
		if len(coords) != 4 {
			return nil, fmt.Errorf("shape %q: want 4 coordinates, got %d", desc, len(coords))
		}
		s := base
		s.Kind = map[string]Kind{"line": Line, "rect": Rect, "triangle": Triangle}[kind]
		s.From = image.Pt(coords[0], coords[1])
		s.To = image.Pt(coords[2], coords[3])
		return []Shape{s}, nil
	case "circle":
		if len(coords) != 3 {
			return nil, fmt.Errorf("shape %q: want 3 coordinates, got %d", desc, len(coords))
		}
		if coords[2] <= 0 {
			return nil, fmt.Errorf("shape %q: invalid radius %d", desc, coords[2])
		}
		s := base
		s.Kind = Circle
		s.From = image.Pt(coords[0], coords[1])
		s.To = image.Pt(coords[0]+coords[2], coords[1])
		return []Shape{s}, nil
	case "free":
		if len(coords) < 4 || len(coords)%2 != 0 {
			return nil, fmt.Errorf("shape %q: want an even number of coordinates, at least 4", desc)
		}
		var shapes []Shape
		for i := 0; i+3 < len(coords); i += 2 {
			s := base
			s.Kind = Line
			s.From = image.Pt(coords[i], coords[i+1])
			s.To = image.Pt(coords[i+2], coords[i+3])
			shapes = append(shapes, s)
		}
		return shapes, nil
	default:
		return nil, fmt.Errorf("shape %q: unknown kind %q", desc, kind)
	}
}

// parseText reads X,Y:MESSAGE or X,Y:COLOR:SIZE:MESSAGE. The styled form is
// used only when both COLOR and SIZE are valid, so messages may contain colons.
func parseText(rest string, style Style) (Shape, error) {
	pos, msg, ok := strings.Cut(rest, ":")
	if !ok {
		return Shape{}, fmt.Errorf("want text:X,Y:MESSAGE or text:X,Y:COLOR:SIZE:MESSAGE")
	}
	coords, err := parseInts(pos)
	if err != nil {
		return Shape{}, err
	}
	if len(coords) != 2 {
		return Shape{}, fmt.Errorf("want 2 coordinates, got %d", len(coords))
	}

	s := Shape{Kind: Text, Color: style.Color, Width: style.Width, Size: style.FontSize, Text: msg}
	s.From = image.Pt(coords[0], coords[1])
	s.To = s.From
	if fields := strings.SplitN(msg, ":", 3); len(fields) == 3 {
		c, cerr := ParseColor(fields[0])
		size, serr := strconv.ParseFloat(fields[1], 64)
		if cerr == nil && serr == nil && size > 0 {
			s.Color, s.Size, s.Text = c, size, fields[2]
		}
	}
	if s.Degenerate() {
		return Shape{}, fmt.Errorf("empty text")
	}
	return s, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}
