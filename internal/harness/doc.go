// Package harness runs schematic scenarios.
//
// A scenario is a YAML file naming a collection manifest, an input tree, a
// sequence of schematic steps and assertions on the final tree. Steps run
// against a real engine with the built-in factories registered; each step
// receives the output tree of the previous one. Every step is recorded in a
// fresh in-memory history store, and the trace is read back from it, so a
// scenario exercises the same path the CLI does.
//
// Invocation IDs and seq numbers are deterministic, which makes traces
// suitable for golden comparison (see RunWithGolden).
//
// Example scenario:
//
//	name: write_and_delete
//	description: Files written by one step are removed by the next
//	collection: ../collection/collection.yaml
//	input:
//	  /README.md: "# sample\n"
//	steps:
//	  - schematic: files
//	    options:
//	      files:
//	        /src/main.go: "package main\n"
//	  - schematic: delete
//	    options:
//	      paths: [/README.md]
//	assertions:
//	  - type: file_count
//	    count: 1
package harness
