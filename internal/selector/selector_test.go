package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

type mapCtx map[string]interface{}

func (m mapCtx) Resolve(path []string) (interface{}, bool) {
	key := path[0]
	for _, p := range path[1:] {
		key += "." + p
	}
	v, ok := m[key]
	return v, ok
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		expr    string
		ctx     mapCtx
		want    bool
		wantErr bool
	}{
		{name: "gt", expr: "pos.x > 10", ctx: mapCtx{"pos.x": 11.0}, want: true},
		{name: "lte int field", expr: "degree.in <= 2", ctx: mapCtx{"degree.in": 2}, want: true},
		{name: "negative literal", expr: "pos.y < -1.5", ctx: mapCtx{"pos.y": -2.0}, want: true},
		{name: "string eq", expr: `node.kind == "reaction"`, ctx: mapCtx{"node.kind": "reaction"}, want: true},
		{name: "single quotes", expr: `node.kind != 'reaction'`, ctx: mapCtx{"node.kind": "molecule"}, want: true},
		{name: "escaped quote", expr: `attr.label == "a\"b"`, ctx: mapCtx{"attr.label": `a"b`}, want: true},
		{name: "bool", expr: "attr.hidden == true", ctx: mapCtx{"attr.hidden": true}, want: true},
		{name: "contains", expr: `attr.label contains "ATP"`, ctx: mapCtx{"attr.label": "ATP synthase"}, want: true},
		{name: "matches", expr: `node.id matches "^m[0-9]+$"`, ctx: mapCtx{"node.id": "m42"}, want: true},
		{name: "string order", expr: `node.id < "b"`, ctx: mapCtx{"node.id": "a"}, want: true},
		{name: "and short circuit", expr: "degree.in > 0 AND missing.field == 1", ctx: mapCtx{"degree.in": 0}, want: false},
		{name: "or short circuit", expr: "degree.in == 0 OR missing.field == 1", ctx: mapCtx{"degree.in": 0}, want: true},
		{name: "not", expr: "NOT degree.out == 0", ctx: mapCtx{"degree.out": 3}, want: true},
		{name: "parens", expr: "(degree.in == 1 OR degree.out == 1) AND node.kind == 'x'", ctx: mapCtx{"degree.in": 1, "degree.out": 0, "node.kind": "x"}, want: true},
		{name: "lowercase keywords", expr: "degree.in == 1 and not degree.out == 1", ctx: mapCtx{"degree.in": 1, "degree.out": 0}, want: true},
		{name: "null eq", expr: "attr.color == null", ctx: mapCtx{"attr.color": nil}, want: true},
		{name: "null ordered", expr: "attr.weight > 3", ctx: mapCtx{"attr.weight": nil}, want: false},
		{name: "null neq", expr: `attr.color != "red"`, ctx: mapCtx{"attr.color": nil}, want: true},
		{name: "missing field", expr: "nope.x == 1", ctx: mapCtx{}, wantErr: true},
		{name: "mixed order", expr: `pos.x > "a"`, ctx: mapCtx{"pos.x": 1.0}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := Parse(tc.expr)
			require.NoError(t, err)
			got, err := Evaluate(expr, tc.ctx)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"pos.x >",
		"pos.x = 1",
		"(pos.x > 1",
		`node.id == "open`,
		"pos.x > 1 pos.y",
		"pos.x # 1",
		`node.id matches "("`,
		"node.id matches 3",
	} {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
}

func TestCompile_UnknownField(t *testing.T) {
	_, err := Compile("node.colour == 'red'")
	assert.ErrorContains(t, err, `unknown field "node.colour"`)
	_, err = Compile("   ")
	assert.Error(t, err)
	_, err = Compile("attr.mol-weight > 100 AND attr.meta.source == 'kegg'")
	assert.NoError(t, err)
}

func TestSelect(t *testing.T) {
	d, err := diagram.Build(&diagram.Snapshot{
		ID: "doc",
		Nodes: []diagram.NodeState{
			{ID: "atp", Kind: diagram.KindMolecule, Attributes: diagram.Attributes{"label": "ATP"}},
			{ID: "r1", Kind: diagram.KindReaction, Bounds: diagram.Bounds{X: 200}},
			{ID: "adp", Kind: diagram.KindMolecule, Attributes: diagram.Attributes{"label": "ADP"}},
			{ID: "note", Kind: diagram.KindLabel},
		},
		Connections: []diagram.ConnectionState{
			{ID: "c1", Source: "atp", Target: "r1"},
			{ID: "c2", Source: "r1", Target: "adp"},
		},
	})
	require.NoError(t, err)

	tests := []struct {
		expr string
		want []diagram.NodeID
	}{
		{`node.kind == "molecule"`, []diagram.NodeID{"atp", "adp"}},
		{"degree.in == 0 AND degree.out == 0", []diagram.NodeID{"note"}},
		{"degree.in >= 1 AND degree.out >= 1", []diagram.NodeID{"r1"}},
		{`attr.label matches "^A.P$" AND NOT degree.in > 0`, []diagram.NodeID{"atp"}},
		{"pos.x > 100", []diagram.NodeID{"r1"}},
		{"attr.label == null", []diagram.NodeID{"r1", "note"}},
		{`node.id == "ghost"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			s, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := s.Select(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expr, s.String())
		})
	}
}
