/*
Package domain contains the core data model of the minimal shell.

It is kept free of I/O so both the engine and the collaborators (commands,
features, stores) can depend on it.

# Key Entities

  - State: immutable snapshot of working directory, log level and prompt segments.
  - Event: semantic tag raised when a State field bound by a DeltaPoint changes.
  - Outcome: the result and diagnostics of one state transition.
  - LifecycleHooks: callbacks for observing commands, passes and feature calls.
*/
package domain
