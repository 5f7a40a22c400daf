package render

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
)

type countingRecorder struct {
	n atomic.Int64
}

func (c *countingRecorder) RecordMalformedNode() { c.n.Add(1) }

func newTestRenderer(opts Options) (*Renderer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return New(zap.New(core), opts), logs
}

func decode(t *testing.T, s string) blueprint.Value {
	t.Helper()
	v, err := blueprint.DecodeValue([]byte(s))
	require.NoError(t, err)
	return v
}

func TestRenderText(t *testing.T) {
	r, logs := newTestRenderer(Options{})

	out := r.Render("<b>not markup</b>")
	require.NotNil(t, out)
	assert.Equal(t, KindText, out.Kind)
	assert.Equal(t, "<b>not markup</b>", out.Text)
	assert.Zero(t, logs.Len())
}

func TestRenderNestedElements(t *testing.T) {
	r, logs := newTestRenderer(Options{})

	out := r.Render(decode(t, `{"type":"p","props":{"className":"lead"},"children":["Hi ",{"type":"b","children":["there"]}]}`))

	require.Equal(t, KindElement, out.Kind)
	assert.Equal(t, "p", out.Tag)
	assert.Equal(t, blueprint.Attributes{{Name: "className", Value: "lead"}}, out.Attributes)
	require.Len(t, out.Children, 2)
	assert.Equal(t, textLeaf("Hi "), out.Children[0])

	b := out.Children[1]
	assert.Equal(t, "b", b.Tag)
	assert.Empty(t, b.Attributes)
	assert.Equal(t, []*Element{textLeaf("there")}, b.Children)
	assert.Empty(t, out.Errors())
	assert.Zero(t, logs.Len())
}

func TestRenderContainsMalformedChild(t *testing.T) {
	rec := &countingRecorder{}
	r, logs := newTestRenderer(Options{Recorder: rec})

	out := r.Render(decode(t, `{"type":"div","children":[{"tag":5},"ok"]}`))

	require.Equal(t, KindElement, out.Kind)
	require.Len(t, out.Children, 2)

	bad := out.Children[0]
	assert.Equal(t, KindError, bad.Kind)
	assert.Equal(t, ErrorMessage, bad.Text)
	require.NotNil(t, bad.Err)
	assert.Equal(t, "$.children[0]", bad.Err.Path)
	assert.Equal(t, textLeaf("ok"), out.Children[1])

	assert.Equal(t, int64(1), rec.n.Load())
	entries := logs.FilterMessage("Invalid element structure found").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "$.children[0]", fields["path"])
	assert.JSONEq(t, `{"tag":5}`, fields["node"].(string))
}

func TestRenderMalformedInputs(t *testing.T) {
	tests := []struct {
		name  string
		input blueprint.Value
	}{
		{"null", nil},
		{"number", json.Number("42")},
		{"boolean", true},
		{"array", []blueprint.Value{"a"}},
		{"missing type", decode(t, `{"props":{}}`)},
		{"empty type", decode(t, `{"type":""}`)},
		{"object type", decode(t, `{"type":{"x":1}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			r, logs := newTestRenderer(Options{Recorder: rec})

			out := r.Render(tt.input)
			require.NotNil(t, out)
			assert.Equal(t, KindError, out.Kind)
			assert.Equal(t, "$", out.Err.Path)
			assert.Equal(t, int64(1), rec.n.Load())
			assert.Equal(t, 1, logs.FilterMessage("Invalid element structure found").Len())
		})
	}
}

func TestRenderIgnoresMalformedPropsAndChildren(t *testing.T) {
	r, logs := newTestRenderer(Options{})

	out := r.Render(decode(t, `{"type":"section","props":"oops","children":{"not":"array"}}`))

	require.Equal(t, KindElement, out.Kind)
	assert.Equal(t, "section", out.Tag)
	assert.Empty(t, out.Attributes)
	assert.Empty(t, out.Children)
	assert.Empty(t, out.Errors())
	assert.Equal(t, 1, logs.FilterMessage("Ignoring malformed attributes").Len())
	assert.Equal(t, 1, logs.FilterMessage("Ignoring malformed children").Len())
}

func TestRenderAttributesVerbatim(t *testing.T) {
	r, _ := newTestRenderer(Options{})

	out := r.Render(decode(t, `{"type":"a","attributes":{"z":1,"href":"#x","onClick":"alert(1)"}}`))

	names := make([]string, 0, len(out.Attributes))
	for _, a := range out.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"z", "href", "onClick"}, names)
}

func TestRenderIsDeterministic(t *testing.T) {
	r, _ := newTestRenderer(Options{})
	v := decode(t, `{"type":"ul","children":[{"type":"li","children":["one"]},{"type":"li","children":["two"]},7]}`)

	first, err := json.Marshal(r.Render(v))
	require.NoError(t, err)
	second, err := json.Marshal(r.Render(v))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRenderNode(t *testing.T) {
	r, _ := newTestRenderer(Options{})
	n := blueprint.NewElement("h1", blueprint.Text("Welcome")).WithAttr("className", "text-4xl")

	out := r.RenderNode(n)
	assert.Equal(t, "h1", out.Tag)
	assert.Equal(t, []*Element{textLeaf("Welcome")}, out.Children)

	assert.Equal(t, KindError, r.RenderNode(nil).Kind)
}

func TestRenderDeepTree(t *testing.T) {
	const depth = 100000
	r, _ := newTestRenderer(Options{})

	var root blueprint.Value = "leaf"
	for i := 0; i < depth; i++ {
		obj := blueprint.NewObject()
		obj.Set("type", "div")
		obj.Set("children", []blueprint.Value{root})
		root = obj
	}

	out := r.Render(root)
	levels := 0
	for el := out; el != nil; {
		levels++
		if len(el.Children) == 0 {
			assert.Equal(t, "leaf", el.Text)
			break
		}
		el = el.Children[0]
	}
	assert.Equal(t, depth+1, levels)
}

func TestRenderMaxDepth(t *testing.T) {
	rec := &countingRecorder{}
	r, _ := newTestRenderer(Options{MaxDepth: 2, Recorder: rec})

	out := r.Render(decode(t, `{"type":"div","children":[{"type":"div","children":[{"type":"p","children":["deep"]}]},"shallow"]}`))

	require.Len(t, out.Children, 2)
	inner := out.Children[0]
	require.Len(t, inner.Children, 1)
	assert.Equal(t, KindError, inner.Children[0].Kind)
	assert.Equal(t, "$.children[0].children[0]", inner.Children[0].Err.Path)
	assert.Equal(t, "shallow", out.Children[1].Text)
	assert.Equal(t, int64(1), rec.n.Load())
}

func TestDisplayTreeJSON(t *testing.T) {
	r, _ := newTestRenderer(Options{})

	out := r.Render(decode(t, `{"type":"div","props":{"id":"x"},"children":["a",{"tag":false}]}`))
	data, err := json.Marshal(out)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"kind":"element","tag":"div","attributes":{"id":"x"},
		"children":[
			{"kind":"text","text":"a"},
			{"kind":"error","message":"Error: Invalid element structure found.","path":"$.children[1]","reason":"element type must be a string, got boolean"}
		]
	}`, string(data))
}

func TestDescribeKeepsOrder(t *testing.T) {
	got := describe(decode(t, `{"tag":5,"props":{"z":"1","a":true},"children":["ok",null]}`))
	assert.Equal(t, `{"tag":5,"props":{"z":"1","a":true},"children":["ok",null]}`, got)
}

func TestDescribeDeepNodeIsBounded(t *testing.T) {
	var v blueprint.Value = "leaf"
	for i := 0; i < 200000; i++ {
		obj := blueprint.NewObject()
		obj.Set("tag", i)
		obj.Set("children", []blueprint.Value{v})
		v = obj
	}

	start := time.Now()
	got := describe(v)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, strings.HasPrefix(got, `{"tag":199999,"children":[{"tag":199998`))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
	assert.LessOrEqual(t, len(got), maxLoggedNode+len("...(truncated)"))
}

func TestDescribeTruncates(t *testing.T) {
	long := strings.Repeat("x", maxLoggedNode*2)
	got := describe(long)
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
	assert.Less(t, len(got), maxLoggedNode+32)
}
