/*
Package runner implements the interactive read-eval-print loop of the shell.

The runner owns the canonical State between turns. Each turn it renders the
prompt, reads one line through a LineReader, hands it to the Shell and
commits the resulting State. Ctrl+C while a command runs cancels only that
command; at the prompt it ends the session, as does EOF.

# Key Components

  - Runner: the loop itself.
  - LineReader: decouples how lines are read (readline on a terminal,
    plain buffered text otherwise).
  - SignalManager: scopes OS interrupts to the command being executed.

# Usage

	r := runner.NewRunner(
		runner.WithReader(reader),
		runner.WithPrinter(printer),
		runner.WithLogger(logger),
	)

	final, err := r.Run(ctx, shell, initial)
*/
package runner
