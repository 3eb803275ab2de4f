package protobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MolecularSadism/enumgen/internal/schema"
)

func generate(t *testing.T, opts Options, input string) string {
	t.Helper()
	doc, err := schema.ParseDocument(input)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Declarations)

	out, err := NewGenerator(opts).Generate(&doc.Declarations[0])
	require.NoError(t, err)
	return string(out)
}

func TestGenerator_Basics(t *testing.T) {
	// Test: Language and extension identify the backend
	g := NewGenerator(Options{})
	assert.Equal(t, "proto", g.Language())
	assert.Equal(t, ".proto", g.FileExtension())
}

func TestGenerator_EventDeclaration(t *testing.T) {
	// Test: Each variant is a message; the declaration wraps them in a oneof
	out := generate(t, Options{}, `
enum GlobalGameEvent @event {
  PlayerJoined { playerName: String!, score: Int32! }
  Tick
}
`)

	assert.Contains(t, out, `syntax = "proto3";`)
	assert.Contains(t, out, "package global_game_event;")

	assert.Contains(t, out, "message PlayerJoined {\n  string player_name = 1;\n  int32 score = 2;\n}")
	assert.Contains(t, out, "message Tick {\n}")

	assert.Contains(t, out, "message GlobalGameEvent {")
	assert.Contains(t, out, "oneof variant {")
	assert.Contains(t, out, "PlayerJoined player_joined = 1;")
	assert.Contains(t, out, "Tick tick = 2;")
}

func TestGenerator_GoPackageOption(t *testing.T) {
	// Test: The go_package option joins prefix and namespace
	out := generate(t, Options{GoPackagePrefix: "example.com/gen"}, `
enum NetworkCommand @message @derive(clone: true) {
  Disconnect
}
`)

	assert.Contains(t, out, `option go_package = "example.com/gen/network_command";`)
}

func TestGenerator_ScalarMapping(t *testing.T) {
	// Test: Small integers widen to proto3's 32-bit scalars
	out := generate(t, Options{}, `
enum Telemetry @event {
  Sample {
    tiny: Int8!
    short: UInt16!
    wide: Int64!
    handle: Entity!
    ratio: Float!
  }
}
`)

	assert.Contains(t, out, "int32 tiny = 1;")
	assert.Contains(t, out, "uint32 short = 2;")
	assert.Contains(t, out, "int64 wide = 3;")
	assert.Contains(t, out, "uint64 handle = 4;")
	assert.Contains(t, out, "double ratio = 5;")
}

func TestGenerator_ByteListCollapsesToBytes(t *testing.T) {
	// Test: [Byte] is the bytes scalar, never a repeated field
	out := generate(t, Options{}, `
enum Blob @message @derive(clone: true) {
  Send { payload: Bytes!, chunks: [Int32!]! }
}
`)

	assert.Contains(t, out, "bytes payload = 1;")
	assert.Contains(t, out, "repeated int32 chunks = 2;")
	assert.NotContains(t, out, "repeated bytes")
}

func TestGenerator_OptionalFields(t *testing.T) {
	// Test: Optional fields carry the proto3 optional keyword
	out := generate(t, Options{}, `
enum Profile @event {
  Update { nickname: String }
}
`)

	assert.Contains(t, out, "optional string nickname = 1;")
}

func TestGenerator_TimeImport(t *testing.T) {
	// Test: Time fields pull in the well-known Timestamp type
	out := generate(t, Options{}, `
enum Clock @event {
  Struck { at: Time! }
}
`)

	assert.Contains(t, out, `import "google/protobuf/timestamp.proto";`)
	assert.Contains(t, out, "google.protobuf.Timestamp at = 1;")
}

func TestGenerator_PositionalFieldNames(t *testing.T) {
	// Test: Tuple-style names lose the leading underscore
	out := generate(t, Options{}, `
enum Move @event {
  Jump(Int32!, Int32!)
}
`)

	assert.Contains(t, out, "int32 f0 = 1;")
	assert.Contains(t, out, "int32 f1 = 2;")
}

func TestGenerator_RejectsGenerics(t *testing.T) {
	// Test: Parameterized declarations have no wire representation
	doc, err := schema.ParseDocument(`
enum Container @event @typeParam(name: "T") {
  Hold { value: _Expr! @expr(value: "T!") }
}
`)
	require.NoError(t, err)

	_, err = NewGenerator(Options{}).Generate(&doc.Declarations[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no proto3 representation")
}

func TestGenerator_RejectsBorrows(t *testing.T) {
	// Test: Borrow-typed fields are rejected with their location
	doc, err := schema.ParseDocument(`
enum View @event {
  Peek { target: _Expr! @expr(value: "&String!") }
}
`)
	require.NoError(t, err)

	_, err = NewGenerator(Options{}).Generate(&doc.Declarations[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Peek")
	assert.Contains(t, err.Error(), "target")
}

func TestGenerator_RejectsNestedLists(t *testing.T) {
	// Test: Nested lists are rejected with their location
	doc, err := schema.ParseDocument(`
enum Grid @event {
  Fill { cells: [[Int32!]!]! }
}
`)
	require.NoError(t, err)

	_, err = NewGenerator(Options{}).Generate(&doc.Declarations[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fill")
	assert.Contains(t, err.Error(), "cells")
}

func TestGenerator_Comments(t *testing.T) {
	// Test: Documentation renders only when requested
	input := `
enum Chat @event {
  """A chat line sent by a player."""
  Said { text: String! }
}
`
	with := generate(t, Options{IncludeComments: true}, input)
	assert.Contains(t, with, "// A chat line sent by a player.")

	without := generate(t, Options{}, input)
	assert.NotContains(t, without, "A chat line sent by a player.")
}
