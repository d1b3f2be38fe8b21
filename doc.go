/*
Package weft is a dataflow execution engine for visual, node-based programs.

A graph is a set of nodes holding Lua code fragments, wired through execution pins
(control flow) and data pins (values). The engine finds the entry points, walks the
execution flow depth-first, resolves each node's inputs from the values produced
upstream and calls the node's entry function through an embedded interpreter whose
namespace persists across calls and runs.

# Concept

The walk (internal/runtime) is decoupled from how code is evaluated (ports.NodeExecutor)
and where its narration goes (ports.LogSink). The default executor is pkg/host, an
in-process Lua host; pkg/adapters/process runs each node in an external interpreter
instead.

# Key Features

  - Deterministic order: entry points in graph order, pins in declaration order.
  - Persistent namespace: functions and variables defined by one node are visible to later ones.
  - Zero-copy handoff: tables and Go values cross nodes by reference, plus an object store.
  - Bounded runs: a step budget stops cyclic graphs; failures halt only their own branch.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/weft"
		"github.com/aretw0/weft/pkg/dsl"
		"github.com/aretw0/weft/pkg/logsink"
	)

	func main() {
		g, err := dsl.New("demo").
			Node("Gen").Function("gen").Code("function gen() return 42 end").DataOut("out").
			Node("Show").Function("show").Code("function show(v) print(v) end").DataIn("v").
			Wire("Gen.out", "Show.v").
			Build()
		if err != nil {
			log.Fatal(err)
		}

		eng, err := weft.New(weft.WithLogSink(logsink.NewText(os.Stdout)))
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		if _, err := eng.Run(context.Background(), g); err != nil {
			log.Fatal(err)
		}
	}
*/
package weft
