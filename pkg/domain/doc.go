/*
Package domain contains the core domain models of the debot session engine.

A debot is a contract that describes its own user interface as a graph of
contexts. Each context carries a description and an ordered list of actions; the
engine fetches that graph at runtime and interprets it. This package holds the
pure data types the engine works with and is free of I/O.

# Key Entities

  - StateID: a context identifier or one of the EXIT, CURRENT and PREV sentinels.
  - Context: a node of the fetched state machine.
  - Action: a unit of work with a closed set of kinds (Kind).
  - AccountState: the cached account snapshot threaded through simulated calls.
  - Checkpoint: a persisted view of a session (current/previous state, account state).
*/
package domain
