package golang

import (
	"strings"
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

func testOptions() Options {
	return Options{RuntimeImport: "github.com/MolecularSadism/enumgen/ecs"}
}

func TestGenerator_Basics(t *testing.T) {
	// Test: Language and extension identify the backend
	g := NewGenerator(testOptions())
	assert.Equal(t, "go", g.Language())
	assert.Equal(t, ".go", g.FileExtension())
}

func TestGenerator_DefaultRuntimeImport(t *testing.T) {
	// Test: A zero RuntimeImport falls back to the bundled runtime
	out := generate(t, Options{}, `
enum GameState @event {
  Paused
}
`)

	assert.Contains(t, out, `"`+DefaultRuntimeImport+`"`)
	assert.Contains(t, out, "var _ ecs.Event = Paused{}")
}

func TestGenerator_EventDeclaration(t *testing.T) {
	// Test: An event declaration becomes a package of observable records
	out := generate(t, testOptions(), `
enum GlobalGameEvent @event {
  PlayerJoined { playerName: String!, score: Int32! }
  Tick
}
`)

	assert.Contains(t, out, "// Code generated by enumgen from GlobalGameEvent. DO NOT EDIT.")
	assert.Contains(t, out, "package global_game_event")
	assert.Contains(t, out, `"github.com/MolecularSadism/enumgen/ecs"`)

	assert.Contains(t, out, "type PlayerJoined struct {")
	assert.Contains(t, out, "PlayerName string `json:\"playerName\"`")
	assert.Contains(t, out, "Score int32 `json:\"score\"`")
	assert.Contains(t, out, "func (PlayerJoined) ObservableEvent() {}")
	assert.Contains(t, out, "var _ ecs.Event = PlayerJoined{}")

	// Empty variants are zero-size records with the same capability.
	assert.Contains(t, out, "type Tick struct{}")
	assert.Contains(t, out, "func (Tick) ObservableEvent() {}")
}

func TestGenerator_RecordOrderMatchesDeclaration(t *testing.T) {
	// Test: Records appear in variant declaration order
	out := generate(t, testOptions(), `
enum GameState @event {
  Running
  Paused
  Stopped
}
`)

	running := strings.Index(out, "type Running")
	paused := strings.Index(out, "type Paused")
	stopped := strings.Index(out, "type Stopped")
	require.NotEqual(t, -1, running)
	require.NotEqual(t, -1, stopped)
	assert.Less(t, running, paused)
	assert.Less(t, paused, stopped)
}

func TestGenerator_MessageRequiresClone(t *testing.T) {
	// Test: @message without clone in the derive set is rejected
	doc, err := schema.ParseDocument(`
enum NetworkCommand @message {
  Disconnect
}
`)
	require.NoError(t, err)

	out, err := NewGenerator(testOptions()).Generate(&doc.Declarations[0])
	assert.Nil(t, out)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, schema.CodeMissingRequiredSemantics, verr.Violations[0].Code)
}

func TestGenerator_MessageDeclaration(t *testing.T) {
	// Test: A message declaration gets the buffered capability plus Clone
	out := generate(t, testOptions(), `
enum NetworkCommand @message @derive(clone: true) {
  Send { payload: [Byte!]! }
}
`)

	assert.Contains(t, out, "func (Send) BufferedMessage() {}")
	assert.Contains(t, out, "var _ ecs.Message = Send{}")
	assert.Contains(t, out, "func (r Send) Clone() Send {")
	assert.Contains(t, out, "out.Payload = append([]byte(nil), r.Payload...)")
}

func TestGenerator_EntityEventAutoPropagate(t *testing.T) {
	// Test: @entityEvent with @autoPropagate wires target and propagation
	out := generate(t, testOptions(), `
enum Damage @entityEvent @autoPropagate {
  Hit { target: Entity!, amount: Int32! }
}
`)

	assert.Contains(t, out, "func (Hit) ObservableEvent() {}")
	assert.Contains(t, out, "func (r Hit) EventTarget() ecs.Entity { return r.Target }")
	assert.Contains(t, out, "return ecs.Propagation{Auto: true, Available: true}")
	assert.Contains(t, out, "var _ ecs.EntityEvent = Hit{}")
}

func TestGenerator_EntityEventManualPropagate(t *testing.T) {
	// Test: @propagate without @autoPropagate keeps the climb opt-in
	out := generate(t, testOptions(), `
enum Damage @entityEvent @propagate {
  Hit { target: Entity! }
}
`)

	assert.Contains(t, out, "return ecs.Propagation{Auto: false, Available: true}")
}

func TestGenerator_EntityEventNoPropagation(t *testing.T) {
	// Test: A bare @entityEvent neither climbs nor allows Propagate
	out := generate(t, testOptions(), `
enum Interaction @entityEvent {
  Clicked { target: Entity! }
}
`)

	assert.Contains(t, out, "return ecs.Propagation{Auto: false, Available: false}")
}

func TestGenerator_ValueSemantics(t *testing.T) {
	// Test: Requested derives become Copy, Equal, and String methods
	out := generate(t, testOptions(), `
enum Score @event @derive(copy: true, equality: true, debug: true) {
  Points { amount: Int32! }
}
`)

	assert.Contains(t, out, "func (r Points) Copy() Points { return r }")
	assert.Contains(t, out, "func (r Points) Equal(other Points) bool {")
	assert.Contains(t, out, "if r.Amount != other.Amount {")
	assert.Contains(t, out, "func (r Points) String() string {")
	assert.Contains(t, out, `"Points{amount: %v}"`)
}

func TestGenerator_DebugPositional(t *testing.T) {
	// Test: Positional records render tuple-style
	out := generate(t, testOptions(), `
enum Move @event @derive(debug: true) {
  Jump(Int32!, Int32!)
}
`)

	assert.Contains(t, out, "F0 int32 `json:\"_0\"`")
	assert.Contains(t, out, "F1 int32 `json:\"_1\"`")
	assert.Contains(t, out, `"Jump(%v, %v)"`)
	assert.Contains(t, out, "r.F0, r.F1")
}

func TestGenerator_DebugOptionalFields(t *testing.T) {
	// Test: Optional fields stringify their value, never the pointer
	out := generate(t, testOptions(), `
enum Match @event @derive(debug: true) {
  Ended { winner: String, score: Int32! }
}
`)

	assert.Contains(t, out, `v0 := "nil"`)
	assert.Contains(t, out, "if r.Winner != nil {")
	assert.Contains(t, out, "v0 = fmt.Sprint(*r.Winner)")
	assert.Contains(t, out, `fmt.Sprintf("Ended{winner: %v, score: %v}", v0, r.Score)`)
}

func TestGenerator_DebugEmptyVariant(t *testing.T) {
	// Test: Empty records stringify to their bare name
	out := generate(t, testOptions(), `
enum GameState @event @derive(debug: true) {
  Paused
}
`)

	assert.Contains(t, out, `return "Paused"`)
}

func TestGenerator_CopyRejectsHeapData(t *testing.T) {
	// Test: copy with a list field is unsatisfiable
	doc, err := schema.ParseDocument(`
enum Batch @event @derive(copy: true) {
  Send { items: [Int32!]! }
}
`)
	require.NoError(t, err)

	_, err = NewGenerator(testOptions()).Generate(&doc.Declarations[0])

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, schema.CodeUnsatisfiableSemantics, verr.Violations[0].Code)
	assert.Equal(t, "items", verr.Violations[0].Field)
}

func TestGenerator_EqualityRejectsOpaqueGenerics(t *testing.T) {
	// Test: equality with an opaque generic application is unsatisfiable
	doc, err := schema.ParseDocument(`
enum Wrapped @event @derive(equality: true) @typeParam(name: "T") {
  Hold { value: _Expr! @expr(value: "Pair<T, Int32>!") }
}
`)
	require.NoError(t, err)

	_, err = NewGenerator(testOptions()).Generate(&doc.Declarations[0])

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, schema.CodeUnsatisfiableSemantics, verr.Violations[0].Code)
}

func TestGenerator_SemanticsReportedPerField(t *testing.T) {
	// Test: Every unsatisfiable field is reported, not just the first
	doc, err := schema.ParseDocument(`
enum Batch @event @derive(copy: true) {
  Send { items: [Int32!]!, tags: [String!]! }
}
`)
	require.NoError(t, err)

	_, err = NewGenerator(testOptions()).Generate(&doc.Declarations[0])

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
}

func TestGenerator_OptionalFields(t *testing.T) {
	// Test: Optional fields become pointers, cloned and compared through nil
	out := generate(t, testOptions(), `
enum Profile @event @derive(clone: true, equality: true) {
  Update { nickname: String }
}
`)

	assert.Contains(t, out, "Nickname *string `json:\"nickname\"`")
	assert.Contains(t, out, "if r.Nickname != nil {")
	assert.Contains(t, out, "out.Nickname = &v")
	assert.Contains(t, out, "if (r.Nickname == nil) != (other.Nickname == nil) {")
}

func TestGenerator_NestedListClone(t *testing.T) {
	// Test: Nested lists clone element by element
	out := generate(t, testOptions(), `
enum Grid @event @derive(clone: true) {
  Fill { cells: [[Int32!]!]! }
}
`)

	assert.Contains(t, out, "c0 := make([][]int32, len(r.Cells))")
	assert.Contains(t, out, "for i0 := range r.Cells {")
	assert.Contains(t, out, "c0[i0] = append([]int32(nil), r.Cells[i0]...)")
	assert.Contains(t, out, "out.Cells = c0")
}

func TestGenerator_ExplicitDeref(t *testing.T) {
	// Test: A @deref-marked field gets the projection
	out := generate(t, testOptions(), `
enum Wrapper @event {
  Hold { value: String! @deref, note: String! }
}
`)

	assert.Contains(t, out, "func (r *Hold) Deref() *string {")
	assert.Contains(t, out, "return &r.Value")
}

func TestGenerator_ImplicitDeref(t *testing.T) {
	// Test: The single-field convention applies only when enabled
	input := `
enum Wrapper @event {
  Hold { value: String! }
}
`
	with := generate(t, Options{RuntimeImport: "github.com/MolecularSadism/enumgen/ecs", ImplicitDeref: true}, input)
	assert.Contains(t, with, "func (r *Hold) Deref() *string {")

	without := generate(t, testOptions(), input)
	assert.NotContains(t, without, "Deref()")
}

func TestGenerator_TypeParams(t *testing.T) {
	// Test: Declared type parameters project onto the variants that use them
	out := generate(t, testOptions(), `
enum Container @event @typeParam(name: "T") {
  Hold { value: _Expr! @expr(value: "T!") }
  Empty
}
`)

	assert.Contains(t, out, "type Hold[T any] struct {")
	assert.Contains(t, out, "Value T `json:\"value\"`")
	assert.Contains(t, out, "func (Hold[T]) ObservableEvent() {}")
	assert.Contains(t, out, "var _ ecs.Event = Hold[struct{}]{}")

	// The unused parameter never reaches the empty variant.
	assert.Contains(t, out, "type Empty struct{}")
}

func TestGenerator_EqualityConstrainsTypeParams(t *testing.T) {
	// Test: equality narrows the projected constraint to comparable
	out := generate(t, testOptions(), `
enum Container @event @derive(equality: true) @typeParam(name: "T") {
  Hold { value: _Expr! @expr(value: "T!") }
}
`)

	assert.Contains(t, out, "type Hold[T comparable] struct {")
}

func TestGenerator_LifetimesErased(t *testing.T) {
	// Test: Borrows flatten to pointers; lifetimes leave no trace
	out := generate(t, testOptions(), `
enum View @event @lifetime(name: "a") {
  Peek { target: _Expr! @expr(value: "&'a String!") }
}
`)

	assert.Contains(t, out, "type Peek struct {")
	assert.Contains(t, out, "Target *string `json:\"target\"`")
	assert.NotContains(t, out, "'a")
}

func TestGenerator_TimeImport(t *testing.T) {
	// Test: Time fields pull in the time import
	out := generate(t, testOptions(), `
enum Clock @event {
  Struck { at: Time! }
}
`)

	assert.Contains(t, out, "\"time\"")
	assert.Contains(t, out, "At time.Time `json:\"at\"`")
}

func TestGenerator_Comments(t *testing.T) {
	// Test: Documentation is carried only when requested
	input := `
enum Chat @event {
  """A chat line sent by a player."""
  Said { text: String! }
}
`
	opts := testOptions()
	opts.IncludeComments = true
	with := generate(t, opts, input)
	assert.Contains(t, with, "// A chat line sent by a player.")

	without := generate(t, testOptions(), input)
	assert.NotContains(t, without, "A chat line sent by a player.")
}
