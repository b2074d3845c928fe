// Package templates provides registry project scaffolding.
//
// A template is a set of files written by "kata-registry init": a
// registry.json manifest, the category collapse map, an optional
// kata-registry.yaml and the component sources the manifest lists.
// Every generated project builds without further edits.
//
// # Available Templates
//
//   - minimal: one hero block and an empty collapse map entry set
//   - blocks: a handful of blocks across several categories plus config
//
// # Usage
//
//	tmpl, err := templates.Get("blocks")
//	if err != nil {
//	    return err
//	}
//	err = tmpl.Create(dir, templates.Config{RegistryName: "acme-ui"})
//
// # Template Variables
//
//	{{.RegistryName}}  - Name written to registry.json
//	{{.Namespace}}     - Install namespace, e.g. @acme-ui
//	{{.Homepage}}      - Registry homepage URL
package templates
