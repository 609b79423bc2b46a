// Package collection loads collection manifests from disk.
//
// A manifest is a YAML file:
//
//	name: "@demo/basic"
//	version: 1.0.0
//	schematics:
//	  files:
//	    description: Create files from options
//	    factory: files
//	    schema: ./files.cue
//	    aliases: [f]
//	  internal:
//	    factory: noop
//	    hidden: true
//
// Schema paths are relative to the manifest and must point to CUE files;
// their content is inlined into the resulting engine.SchematicDescription.
package collection
