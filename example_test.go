package weft_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/dsl"
)

// ExampleEngine_Run wires a producer into a transformer and prints the
// values recorded on their data outputs.
func ExampleEngine_Run() {
	g, err := dsl.New("example").
		Node("Gen").Function("gen").Code("function gen() return 42 end").DataOut("out").
		Node("Double").Function("double").Code("function double(x) return x * 2 end").DataIn("x").DataOut("out").
		Wire("Gen.out", "Double.x").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := weft.New()
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	report, err := eng.Run(context.Background(), g)
	if err != nil {
		log.Fatal(err)
	}

	values := report.Values.Snapshot()
	fmt.Println("Gen.out:", values["Gen.out"])
	fmt.Println("Double.out:", values["Double.out"])
	// Output:
	// Gen.out: 42
	// Double.out: 84
}
