package command

import (
	"fmt"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

func requireString(p Params, kind, key string) (string, error) {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s: %s is required", ErrInvalidParams, kind, key)
	}
	return s, nil
}

func optionalAttributes(p Params, kind, key string) (diagram.Attributes, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch m := raw.(type) {
	case map[string]interface{}:
		return diagram.Attributes(m).Clone(), nil
	case diagram.Attributes:
		return m.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s: %s must be an object", ErrInvalidParams, kind, key)
}

func optionalPoints(p Params, kind, key string) ([]diagram.Point, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if pts, ok := raw.([]diagram.Point); ok {
		return pts, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s must be a list of points", ErrInvalidParams, kind, key)
	}
	out := make([]diagram.Point, 0, len(list))
	for i, item := range list {
		pt, err := toPoint(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s[%d]: %v", ErrInvalidParams, kind, key, i, err)
		}
		out = append(out, pt)
	}
	return out, nil
}

func optionalBounds(p Params, kind, key string) (diagram.Bounds, bool, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return diagram.Bounds{}, false, nil
	}
	if b, ok := raw.(diagram.Bounds); ok {
		return b, true, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return diagram.Bounds{}, false, fmt.Errorf("%w: %s: %s must be an object", ErrInvalidParams, kind, key)
	}
	var b diagram.Bounds
	for name, dst := range map[string]*float64{"x": &b.X, "y": &b.Y, "width": &b.Width, "height": &b.Height} {
		v, present := m[name]
		if !present {
			continue
		}
		f, ok := toFloat64(v)
		if !ok {
			return diagram.Bounds{}, false, fmt.Errorf("%w: %s: %s.%s is not numeric", ErrInvalidParams, kind, key, name)
		}
		*dst = f
	}
	if b.Width < 0 || b.Height < 0 {
		return diagram.Bounds{}, false, fmt.Errorf("%w: %s: %s has negative size", ErrInvalidParams, kind, key)
	}
	return b, true, nil
}

func toPoint(v interface{}) (diagram.Point, error) {
	switch pt := v.(type) {
	case diagram.Point:
		return pt, nil
	case map[string]interface{}:
		x, okX := toFloat64(pt["x"])
		y, okY := toFloat64(pt["y"])
		if !okX || !okY {
			return diagram.Point{}, fmt.Errorf("x and y must be numeric")
		}
		return diagram.Point{X: x, Y: y}, nil
	case []interface{}:
		if len(pt) == 2 {
			x, okX := toFloat64(pt[0])
			y, okY := toFloat64(pt[1])
			if okX && okY {
				return diagram.Point{X: x, Y: y}, nil
			}
		}
	}
	return diagram.Point{}, fmt.Errorf("expected {x, y} or [x, y], got %T", v)
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
