package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/MolecularSadism/enumgen/internal/config"
	"github.com/MolecularSadism/enumgen/internal/dev"
)

// DevDependencies for the dev command
type DevDependencies struct {
	ConfigLoader   ConfigLoader
	ServerFactory  DevServerFactory
	SignalNotifier SignalNotifier
	Output         Output
}

type DevServerFactory interface {
	NewServer(cfg *config.Config, projectRoot string) DevServer
}

type DevServer interface {
	Start(ctx context.Context) error
}

type defaultDevServerFactory struct{}

func (f *defaultDevServerFactory) NewServer(cfg *config.Config, projectRoot string) DevServer {
	return dev.NewServer(cfg, projectRoot)
}

// DevCommand encapsulates the dev logic with injected dependencies
type DevCommand struct {
	deps DevDependencies
}

// NewDevCommand creates a new dev command with default dependencies
func (c *Controller) NewDevCommand() *DevCommand {
	return &DevCommand{
		deps: DevDependencies{
			ConfigLoader:   &defaultConfigLoader{path: c.Flags.Config},
			ServerFactory:  &defaultDevServerFactory{},
			SignalNotifier: &defaultSignalNotifier{},
			Output:         &defaultOutput{},
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (dc *DevCommand) WithDependencies(deps DevDependencies) *DevCommand {
	dc.deps = deps
	return dc
}

// Execute runs the dev command
func (dc *DevCommand) Execute(ctx context.Context) error {
	cfg, projectRoot, err := dc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	dc.deps.Output.Printf("🚀 Watching %s for declaration changes...\n", cfg.Name)
	dc.deps.Output.Printf("📁 Project root: %s\n", projectRoot)
	dc.deps.Output.Printf("📝 Declarations: %s\n", filepath.Join(projectRoot, cfg.Schema))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	dc.deps.SignalNotifier.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer dc.deps.SignalNotifier.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			dc.deps.Output.Println("\n\n👋 Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	server := dc.deps.ServerFactory.NewServer(cfg, projectRoot)
	if err := server.Start(ctx); err != nil {
		if err == context.Canceled {
			return nil
		}
		return fmt.Errorf("watch error: %w", err)
	}

	return nil
}

// Dev regenerates output whenever a watched declaration file changes
func (c *Controller) Dev(ctx context.Context) error {
	return c.NewDevCommand().Execute(ctx)
}
