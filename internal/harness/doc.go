// Package harness runs dispatch conformance scenarios.
//
// A scenario registers callbacks against a fresh in-memory catalog,
// scripts per-callback behavior, walks structured commands through the
// full lifecycle on the real engine, and asserts on the firing trace
// and command outcomes.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	role: origin
//	search_path: [public]
//	registrations:
//	  - name: audit
//	    event: command_end
//	    callback: cb.audit
//	    tags: [CREATE TABLE, DROP TABLE]
//	cancel:
//	  - callback: cb.guard
//	    reason: "drops are frozen"
//	commands:
//	  - label: create_users
//	    node:
//	      create_table:
//	        table: { name: users }
//	        columns: [{ name: id, type: { name: bigint } }]
//	expect:
//	  - type: fired
//	    registration: audit
//	    event: command_end
//	  - type: status
//	    command: create_users
//	    status: completed
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - fired: a registration appears in the trace, optionally filtered
//     by event and command
//   - order: registrations first fire in the given order
//   - count: a registration fires exactly N times
//   - status: a command ended completed, canceled, failed or refused
//   - text: a command's normalized text contains a substring
//
// # Deterministic Testing
//
// Scenarios execute with a sequential command ID generator and the
// engine's logical seq clock against an in-memory catalog, so traces
// are byte-stable across runs and suitable for golden comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/veto.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
