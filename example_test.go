package replet_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/replet/pkg/adapters/memory"
	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
)

type command interface{ isCommand() }

type add struct {
	Numbers []int
}

type divide struct {
	A, B int
}

func (add) isCommand()    {}
func (divide) isCommand() {}

// Example_calculator runs a scripted session against an in-memory source.
// This is useful for testing, or for driving the loop without a terminal.
func Example_calculator() {
	// 1. Describe the commands.
	g := grammar.MustCompile(&grammar.Schema{
		Name: "calc",
		Commands: []grammar.CommandSpec{
			{Name: "add", Args: []grammar.ArgSpec{{Name: "numbers", Type: grammar.TypeInt, Variadic: true, Required: true}}},
			{Name: "divide", Args: []grammar.ArgSpec{
				{Name: "a", Type: grammar.TypeInt, Required: true},
				{Name: "b", Type: grammar.TypeInt, Required: true},
			}},
		},
	})

	// 2. Map command paths to typed commands.
	decoder := grammar.NewRouter[command]().
		Handle("add", grammar.Into[command, add]()).
		Handle("divide", grammar.Into[command, divide]())

	// 3. Implement them.
	handler := repl.HandlerFunc[command](func(ctx *repl.ExecutionContext, cmd command) error {
		switch c := cmd.(type) {
		case add:
			sum := 0
			for _, n := range c.Numbers {
				sum += n
			}
			return ctx.Printf("%d", sum)
		case divide:
			if c.B == 0 {
				return errors.New("division by zero")
			}
			return ctx.Printf("%d", c.A/c.B)
		}
		return nil
	})

	// 4. Feed a script and run until the input ends.
	src := memory.New([]string{"add 1 2 3", "divide 7 0", "divide seven 2", "divide 9 3"})
	r, err := repl.New(src, g, decoder, handler)
	if err != nil {
		log.Fatal(err)
	}
	err = r.Run(context.Background())

	for _, line := range src.Printed() {
		fmt.Println(strings.SplitN(line, "\n", 2)[0])
	}
	fmt.Println("exit code:", repl.ExitCode(err))

	// Output:
	// 6
	// error: division by zero
	// error: invalid value for "a": strconv.Atoi: parsing "seven": invalid syntax
	// 3
	// exit code: 0
}
