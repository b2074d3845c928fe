// Package index defines the component index documents the build emits.
//
//   - lib/component-index.json: every Entry, pretty-printed, for the
//     registry browser.
//   - public/r/index.json: the agent index with absolute install URLs and the
//     category distribution, for automated consumers.
//   - public/r/index-compact.json: minified {name, category, url} triples for
//     lightweight discovery.
//
// Entries are pure projections of the manifest and are regenerated on every
// build; a component has no identity beyond its name.
package index
