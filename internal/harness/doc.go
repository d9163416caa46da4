// Package harness runs scripted performances against a recording engine.
//
// A scenario submits score events and score text to a real bridge bound to
// a testutil.FakeEngine, lets the performance run until the fake finishes
// or faults, and captures the engine call trace, the run outcome and the
// journaled commands. Traces are deterministic, so they can be compared
// against golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	run_id: golden-run          # optional, default "test-run-default"
//	finish_after: 2             # blocks until the fake engine finishes
//	finish_code: 1              # optional, default 1
//	panic_at: 5                 # optional block index that faults
//	reject_opcode: q            # optional opcode the engine rejects
//	steps:
//	  - event: { opcode: i, fields: [1, 0, 1] }
//	  - text: "i2 0 1"
//	  - event: { opcode: i, fields: [3, 0, 1] }
//	    at_block: 1             # submitted while block 1 renders
//	expect:
//	  reason: completed
//	  code: 1
//	  blocks: 2
//	  applied: 3
//	assertions:
//	  - type: trace_contains
//	    line: "[0] event i 1 0 1"
//	  - type: trace_order
//	    lines: ["[0] score \"i2 0 1\"", "[2] event i 3 0 1"]
//	  - type: trace_count
//	    kind: event
//	    count: 3
//
// Steps without at_block are submitted before Start, in file order. A step
// with at_block N is submitted from inside block N, so it is applied at
// boundary N+1.
package harness
