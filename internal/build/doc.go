// Package build turns registry.json into the served registry artifacts.
//
// For every non-template manifest item the builder reads the listed source
// files, assembles a shadcn registry item, hashes it over its canonical JSON
// form and writes it to the output directory. After the item pass it writes
// three aggregate indexes.
//
// # Usage
//
//	builder := build.New(cfg, build.Options{Logger: logger})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("Built %d components in %s\n", result.Built, result.Duration)
//
// # Output Structure
//
//	public/r/
//	├── <name>.json          # One registry item per component
//	├── index.json           # Agent index with URLs and install commands
//	└── index-compact.json   # Minified name/category/url index
//	lib/
//	└── component-index.json # Browser index
//
// # Missing Files
//
// A listed source file that does not exist is a warning for its item. An
// item whose files are all missing is skipped. The build still writes every
// artifact and then fails with KR121 when any file was missing. Any other
// read error fails the build immediately with KR120.
package build
