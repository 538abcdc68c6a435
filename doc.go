/*
Package minimal is an interactive command shell built around a
state-transition propagation engine.

Each input line names a command. The command maps the current State to a
new one; the fields that changed raise events, and registered features react
to those events with further State changes until nothing is pending or an
iteration cap is reached. The settled State becomes the input of the next
command.

# Concept

State is immutable. Commands and feature listeners never mutate it; they
return a modified copy built with State.With, or nil for "no change". A
small table of delta points binds State fields to events, so a change of
working directory raises WorkingDirectoryChanged while a change of log level
raises nothing.

# Usage

	shell := minimal.New(
		minimal.WithCommands(commands.Builtins(deps)...),
		minimal.WithFeatures(git.Feature()),
	)

	primed := shell.Start(ctx, domain.NewState(wd, domain.DefaultLogLevel))

	outcome, err := shell.Execute(ctx, primed.State, "cd ..")
	if err != nil {
		printer.Error(err.Error())
	}
	fmt.Print(shell.Prompt(outcome.State))
*/
package minimal
