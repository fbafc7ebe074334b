package cueschema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelabs/loupe/schema"
)

func mustClass(t *testing.T, n schema.Node) schema.Class {
	t.Helper()
	c, err := schema.Classify(n)
	require.NoError(t, err)
	return c
}

func TestCompileStringPrimitives(t *testing.T) {
	node, err := CompileString(`
title:  string
count:  number
ratio:  float
active: bool
blob:   _
`)
	require.NoError(t, err)

	obj, ok := schema.Underlying(node).(*schema.Object)
	require.True(t, ok)
	require.Len(t, obj.Fields, 5)

	for _, f := range obj.Fields {
		assert.Equal(t, schema.ClassPrimitive, mustClass(t, f.Schema), "field %s", f.Name)
	}

	blob, ok := obj.FieldSchema("blob")
	require.True(t, ok)
	assert.Equal(t, schema.PrimAny, schema.Underlying(blob).(*schema.Primitive).Type)
}

func TestCompileFieldOrderFollowsDeclaration(t *testing.T) {
	node, err := CompileString("zeta: string\nalpha: string\n")
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	require.Len(t, obj.Fields, 2)
	assert.Equal(t, "zeta", obj.Fields[0].Name)
	assert.Equal(t, "alpha", obj.Fields[1].Name)
}

func TestCompileConcreteValuesBecomeLiterals(t *testing.T) {
	node, err := CompileString(`
kind:    "card"
version: 2
flag:    true
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	kind, _ := obj.FieldSchema("kind")
	p := schema.Underlying(kind).(*schema.Primitive)
	assert.Equal(t, schema.PrimLiteral, p.Type)
	assert.Equal(t, "card", p.Literal)

	version, _ := obj.FieldSchema("version")
	assert.Equal(t, float64(2), schema.Underlying(version).(*schema.Primitive).Literal)
}

func TestCompileNestedStruct(t *testing.T) {
	node, err := CompileString(`
meta: {
	author:  string
	version: number
}
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	meta, ok := obj.FieldSchema("meta")
	require.True(t, ok)
	assert.Equal(t, schema.ClassStruct, mustClass(t, meta))

	inner := schema.Underlying(meta).(*schema.Object)
	_, ok = inner.FieldSchema("author")
	assert.True(t, ok)
}

func TestCompilePatternConstraintBecomesMap(t *testing.T) {
	node, err := CompileString(`
labels: {[string]: string}
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	labels, ok := obj.FieldSchema("labels")
	require.True(t, ok)
	assert.Equal(t, schema.ClassMap, mustClass(t, labels))
}

func TestCompileOpenList(t *testing.T) {
	node, err := CompileString(`
tags: [...string]
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	tags, ok := obj.FieldSchema("tags")
	require.True(t, ok)
	assert.Equal(t, schema.ClassList, mustClass(t, tags))
}

func TestCompileClosedListIsRejected(t *testing.T) {
	_, err := CompileString(`
pair: [string, string]
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}

func TestCompileTextMarker(t *testing.T) {
	node, err := CompileString(`
body: string @loupe(text)
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	body, ok := obj.FieldSchema("body")
	require.True(t, ok)
	assert.Equal(t, schema.ClassText, mustClass(t, body))
}

func TestCompileNodesMarker(t *testing.T) {
	node, err := CompileString(`
tasks: [...{text: string, done: bool}] @loupe(nodes)
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	tasks, ok := obj.FieldSchema("tasks")
	require.True(t, ok)
	assert.Equal(t, schema.ClassNodeList, mustClass(t, tasks))

	nl := schema.Underlying(tasks).(*schema.NodeList)
	_, ok = nl.Elem.FieldSchema("text")
	assert.True(t, ok)
}

func TestCompileNodesMarkerRequiresStructElements(t *testing.T) {
	_, err := CompileString(`
tasks: [...string] @loupe(nodes)
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "struct elements")
}

func TestCompileNodesMarkerRequiresList(t *testing.T) {
	_, err := CompileString(`
tasks: string @loupe(nodes)
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list")
}

func TestCompileUnknownMarker(t *testing.T) {
	_, err := CompileString(`
x: string @loupe(frob)
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frob")
}

func TestCompileDisjunctionOfPrimitives(t *testing.T) {
	node, err := CompileString(`
theme: "light" | "dark"
`)
	require.NoError(t, err)

	obj := schema.Underlying(node).(*schema.Object)
	theme, ok := obj.FieldSchema("theme")
	require.True(t, ok)
	assert.Equal(t, schema.ClassPrimitive, mustClass(t, theme))

	// The compiled union decodes both alternatives and nothing else.
	_, err = schema.Decode(theme, "light")
	assert.NoError(t, err)
	_, err = schema.Decode(theme, "solarized")
	assert.Error(t, err)
}

func TestCompileStructuralDisjunctionRejectedAtClassification(t *testing.T) {
	node, err := CompileString(`
payload: {kind: "a", x: number} | {kind: "b", y: number}
`)
	require.NoError(t, err, "compilation itself accepts the union")

	obj := schema.Underlying(node).(*schema.Object)
	payload, ok := obj.FieldSchema("payload")
	require.True(t, ok)

	_, err = schema.Classify(payload)
	assert.True(t, schema.IsUnsupportedUnion(err))
}

func TestCompileSyntaxErrorCarriesPosition(t *testing.T) {
	_, err := CompileString("title: strin{{{")
	require.Error(t, err)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.cue")
	require.NoError(t, os.WriteFile(path, []byte("title: string\n"), 0o644))

	node, err := CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, schema.ClassStruct, mustClass(t, node))

	_, err = CompileFile(filepath.Join(dir, "missing.cue"))
	assert.Error(t, err)
}
