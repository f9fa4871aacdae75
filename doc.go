/*
Package debot runs sessions against debots: smart contracts that describe an
interactive dialogue as a graph of contexts and actions.

The engine fetches the context graph from the debot, enters the initial
context and executes the actions the user picks. Instant actions run as soon
as their context is entered; the rest are presented to a Browser, the front
end that prints text, collects input and signing keys, and hosts nested debots.
Chain access goes through a ports.CallService, so the same engine runs against
a live network client or the scripted fixture in pkg/adapters/fixture.

# Usage

	service, err := fixture.Load("counter.yaml")
	if err != nil {
		log.Fatal(err)
	}

	term := runner.NewTerminal(os.Stdin, os.Stdout)
	defer term.Close()

	eng, err := debot.New(string(service.Entry()), service, term,
		debot.WithMaxInstantSwitches(128),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := runner.New(term).Run(ctx, eng); err != nil {
		log.Fatal(err)
	}

# Persistence

With WithCheckpointStore the engine saves its position after every step. A
session started with a fixed WithSessionID can later be resumed through
Engine.Resume. pkg/adapters/file keeps checkpoints as JSON files;
pkg/adapters/redis provides a store and a session lock for sharing sessions
between processes.
*/
package debot
