/*
Package dsl provides a fluent Go builder for constructing weft graphs in code.

It is the programmatic counterpart of the YAML graph documents: useful for tests,
embedded scenarios and generated graphs.

Example usage:

	g, err := dsl.New("demo").
		Node("Gen").Function("gen").Code("function gen() return 42 end").DataOut("out").Then("Show").
		Reroute("R").
		Node("Show").Function("show").Code("function show(v) print(v) end").DataIn("v").
		Wire("Gen.out", "R.in").
		Wire("R.out", "Show.v").
		Build()
*/
package dsl
