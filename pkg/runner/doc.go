/*
Package runner is the terminal front end for debot sessions.

Terminal implements ports.Browser over a reader and a writer: it prints the
lines a debot logs, collects the actions it presents into a numbered menu,
and prompts for arguments and signing keys. Runner drives a session by
reading menu choices until the debot exits or the user quits.

	term := runner.NewTerminal(os.Stdin, os.Stdout)
	defer term.Close()
	engine, _ := debot.New(addr, service, term)
	err := runner.New(term).Run(ctx, engine)
*/
package runner
