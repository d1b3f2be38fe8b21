/*
Package domain contains the core data model shared by the weft engine and its adapters.

It describes the graph the engine walks (Nodes, Pins, Connections), the run-scoped
bookkeeping produced by a walk (PinValues, Report) and the narration handed to log
sinks (LogEntry). The engine borrows graphs for the duration of a run and never
changes their topology. This package is free of I/O and interpreter concerns.

# Key Entities

  - Node: A code fragment with an entry-function name and ordered input/output pins.
  - Pin: A named execution (control flow) or data (value carrying) endpoint.
  - Connection: A directed edge from an output pin to an input pin of the same kind.
  - PinValues: The per-run table of values produced by data output pins.
  - Report: The outcome of one run.
*/
package domain
