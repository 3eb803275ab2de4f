package codegen

import (
	"github.com/MolecularSadism/enumgen/internal/codegen/golang"
	"github.com/MolecularSadism/enumgen/internal/codegen/protobuf"
	"github.com/MolecularSadism/enumgen/internal/codegen/rust"
)

// DefaultRegistry is the global registry instance with pre-registered backends
var DefaultRegistry = NewRegistry()

func init() {
	// Register Go backend
	DefaultRegistry.Register("go", func(opts Options) Generator {
		return golang.NewGenerator(golang.Options{
			RuntimeImport:   opts.RuntimeImport,
			ImplicitDeref:   opts.ImplicitDeref,
			IncludeComments: opts.IncludeComments,
		})
	})

	// Register Rust backend, with rs as an alias
	rustFactory := func(opts Options) Generator {
		return rust.NewGenerator(rust.Options{
			ImplicitDeref:   opts.ImplicitDeref,
			IncludeComments: opts.IncludeComments,
		})
	}
	DefaultRegistry.Register("rust", rustFactory)
	DefaultRegistry.Register("rs", rustFactory)

	// Register proto backend for wire-format interop
	DefaultRegistry.Register("proto", func(opts Options) Generator {
		return protobuf.NewGenerator(protobuf.Options{
			IncludeComments: opts.IncludeComments,
		})
	})
}
