/*
Package ports defines the driven ports (interfaces) of the weft engine.

These interfaces decouple the coordinator from how node code is evaluated, where
narration goes and how graphs are obtained, so the same walk can run against an
embedded interpreter, an external process, a terminal, Redis or a test harness.

# Key Interfaces

  - NodeExecutor: Evaluates one node's fragment and calls its entry function.
  - LogSink: Receives human-readable progress lines for a run.
  - GraphLoader: Produces a graph from a document on disk.
  - Engine: The surface adapters (HTTP, MCP) drive.
*/
package ports
