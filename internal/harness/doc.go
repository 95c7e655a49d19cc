// Package harness provides conformance testing for dragsort puzzles.
//
// The harness plays scripted gestures through a real engine.Engine and
// checks the resulting attempt trace and session state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: hot_cold_pointer
//	description: "What this scenario validates"
//	session_id: s-hot-cold
//	mount: {width: 1024, height: 768}
//	puzzle:
//	  zones:
//	    - {id: hot, label: Hot, accept: [hot]}
//	  items:
//	    - {type: hot, content: "☀️"}
//	steps:
//	  - {action: drag, item: item-0, zone: hot, expect: accepted}
//	  - {action: wait, duration: 500ms}
//	assertions:
//	  placed_count: 1
//	  success_count: 1
//
// A scenario may instead name a catalogue task:
//
//	catalogue: ../../../testdata/catalogue
//	category: logic_patterns
//	task: pat_01
//
// # Deterministic Testing
//
// The harness uses:
//   - Fixed session ids (testutil.FixedSessionIDs)
//   - Deterministic logical clock (testutil.DeterministicClock)
//   - A manual scheduler; the success delay only elapses on wait steps
//   - In-memory SQLite database (isolated per scenario)
//
// This ensures identical traces across runs for golden file comparison.
package harness
