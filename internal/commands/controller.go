// Package commands contains the CLI commands for the application
package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
)

type Flags struct {
	LogLevel string
	Config   string
}

type Controller struct {
	Flags  *Flags
	Logger zerolog.Logger
}

// Output abstracts user-facing prints for testability
type Output interface {
	Printf(format string, args ...any)
	Println(args ...any)
}

type defaultOutput struct{}

func (o *defaultOutput) Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}

func (o *defaultOutput) Println(args ...any) {
	fmt.Println(args...)
}

// SignalNotifier abstracts signal registration for testability
type SignalNotifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type defaultSignalNotifier struct{}

func (n *defaultSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (n *defaultSignalNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}
