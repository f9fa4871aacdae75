/*
Package dsl builds debot fixtures in Go.

It is the programmatic counterpart of the YAML fixture format, useful for tests
and for generating simulated networks:

	counter := dsl.New("0:1111111111111111111111111111111111111111111111111111111111111111").
		Name("Counter").
		Version("1.0.0")

	counter.Context(0, "Menu").
		Print("Welcome!", "", dsl.Current).Instant().
		Goto("open", "Open details", dsl.To(1)).
		Goto("quit", "Quit", dsl.Exit)

	counter.Context(1, "Details").
		Goto("back", "Back", dsl.Prev)

	file, err := dsl.Build(counter)
	// ... fixture.New(file)
*/
package dsl
