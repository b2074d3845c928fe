// Package registry models the shadcn registry this tool builds and serves.
//
// Components are distributed under the "copy-paste ownership" model: the
// shadcn CLI fetches a registry item and copies its source into the
// consumer's project, where the consumer owns it completely.
//
// # Manifest
//
// registry.json lists every component:
//
//	{
//	  "name": "kata-shadcn",
//	  "homepage": "https://kata-shadcn.dev",
//	  "items": [
//	    {
//	      "name": "hero1",
//	      "type": "registry:block",
//	      "title": "Hero 1",
//	      "description": "Centered hero with headline and call to action",
//	      "files": [{"path": "registry/default/blocks/hero1.tsx", "type": "registry:block"}],
//	      "dependencies": ["lucide-react"],
//	      "registryDependencies": ["button"]
//	    }
//	  ]
//	}
//
// A bare JSON array of items is accepted too, and a file entry may be a plain
// path string.
//
// # Registry Items
//
// Each component is published as /r/<name>.json following the shadcn
// registry-item schema, with file contents inlined. Client fetches those
// documents from a running registry.
package registry
