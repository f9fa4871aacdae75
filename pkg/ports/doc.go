/*
Package ports defines the driven ports (interfaces) of the debot engine.

These interfaces decouple the session interpreter from the collaborators it drives,
so the same engine runs against a real contract-call service or an offline
simulator, and against a terminal or any other front end.

# Key Interfaces

  - CallService: simulated calls, message construction/submission, body decoding, account queries.
  - Browser: the user-facing front end (state notifications, logs, action presentation, input, keys, nested sessions).
  - RoutineRegistry: named local utility routines invoked by CallEngine actions.
  - CheckpointStore: optional persistence of session checkpoints.
*/
package ports
