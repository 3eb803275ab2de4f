package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MolecularSadism/enumgen/internal/config"
)

const devTestDeclarations = `
enum PickupEvent @event @derive(clone: true, debug: true) {
  CoinCollected(Int32!)
}
`

func devTestProject(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "events.gql"), []byte(devTestDeclarations), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "enumgen.json"), []byte(`{"name": "dev-test"}`), 0644))

	cfg, err := config.LoadConfigFromPath(filepath.Join(root, "enumgen.json"))
	require.NoError(t, err)
	return cfg, root
}

func TestServer_InitialGeneration(t *testing.T) {
	// Test: Starting the server generates output before the first change
	cfg, root := devTestProject(t)
	s := NewServer(cfg, root)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	generated := filepath.Join(root, "generated", "go", "pickup_event", "pickup_event.go")
	content, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package pickup_event")
}

func TestServer_RegeneratesOnChange(t *testing.T) {
	// Test: Editing the declaration file refreshes the generated output
	cfg, root := devTestProject(t)
	s := NewServer(cfg, root)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	updated := `
enum PickupEvent @event @derive(clone: true, debug: true) {
  CoinCollected(Int32!)
  GemCollected(Int32!)
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "events.gql"), []byte(updated), 0644))

	generated := filepath.Join(root, "generated", "go", "pickup_event", "pickup_event.go")
	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(generated)
		return err == nil && strings.Contains(string(content), "GemCollected")
	}, 2*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestServer_SurvivesBrokenDeclarations(t *testing.T) {
	// Test: A validation failure keeps the watch loop alive
	cfg, root := devTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "events.gql"),
		[]byte("enum Broken @derive(clone: true) { A(Int32!) }"), 0644))

	s := NewServer(cfg, root)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
