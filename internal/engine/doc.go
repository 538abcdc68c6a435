/*
Package engine implements the state transition loop of the shell.

A transition runs one command, diffs its result against the prior state
through the delta point table, and fans every resulting event out to the
active features in registration order. Features may return new states,
which raise further events; the loop repeats until no events are pending
or the pass cap is reached. Events are processed first-in first-out and a
pending event is never queued twice.

Handlers and listeners run under guard.Call: panics are recovered and
optional timeouts abandon calls that do not return.
*/
package engine
