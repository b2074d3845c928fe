// Package config provides configuration loading for kata-registry.
//
// Every setting has a default, so a project only needs registry.json and
// lib/category-collapse.json. Defaults can be overridden by an optional
// kata-registry.json (or .yaml) at the project root and by environment
// variables prefixed with KATA_REGISTRY_ (dots become underscores, e.g.
// KATA_REGISTRY_SERVE_ADDR).
//
// # Configuration File Structure
//
//	{
//	  "namespace": "@kata-shadcn",
//	  "base_url": "https://kata-shadcn.dev",
//	  "paths": {
//	    "manifest": "registry.json",
//	    "collapse_map": "lib/category-collapse.json",
//	    "output": "public/r",
//	    "browser_index": "lib/component-index.json"
//	  },
//	  "build": {
//	    "templates": ["hello-world", "example-form"],
//	    "max_description_tags": 8,
//	    "compact_max_bytes": 307200
//	  },
//	  "categories": {
//	    "max_share": 0.15,
//	    "min": 20,
//	    "max": 35
//	  },
//	  "serve": {"addr": ":8080"},
//	  "publish": {"bucket": "kata-registry", "prefix": "r/"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println("Manifest:", cfg.ManifestPath())
package config
