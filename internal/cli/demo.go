package cli

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/replet"
	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
)

//go:embed demo.yaml
var demoYAML []byte

const aboutText = `# replet

An embeddable read-eval-print loop. Lines are parsed against a command
schema, decoded into typed commands and handed to your handler.

* Type **help** to list commands, or **help greet** for details.
* Press **Ctrl+C** or **Ctrl+D** to leave.
`

// DemoSchema returns the built-in command set used when no schema is configured.
func DemoSchema() (*grammar.Schema, error) {
	s, err := grammar.ParseSchema(demoYAML)
	if err != nil {
		return nil, err
	}
	s.Version = replet.Version
	return s, nil
}

type demoCommand interface{ demo() }

type greetCmd struct {
	Name  string
	Shout bool
	Times int
}

type echoCmd struct {
	Words []string
}

type aboutCmd struct{}

type panicCmd struct{}

type failCmd struct {
	Reason string
}

type exitCmd struct{}

func (greetCmd) demo() {}
func (echoCmd) demo()  {}
func (aboutCmd) demo() {}
func (panicCmd) demo() {}
func (failCmd) demo()  {}
func (exitCmd) demo()  {}

func demoDecoder() *grammar.Router[demoCommand] {
	return grammar.NewRouter[demoCommand]().
		Handle("greet", grammar.Into[demoCommand, greetCmd]()).
		Handle("echo", grammar.Into[demoCommand, echoCmd]()).
		Handle("about", grammar.Into[demoCommand, aboutCmd]()).
		Handle("panic-test", grammar.Into[demoCommand, panicCmd]()).
		Handle("fail", grammar.Into[demoCommand, failCmd]()).
		Handle("exit", grammar.Into[demoCommand, exitCmd]())
}

func handleDemo(ctx *repl.ExecutionContext, cmd demoCommand) error {
	switch c := cmd.(type) {
	case greetCmd:
		if c.Times < 1 {
			return ctx.HandleError(ctx.Error(grammar.KindValueValidation, "--times must be at least 1, got %d", c.Times))
		}
		msg := fmt.Sprintf("Hello, %s!", c.Name)
		if c.Shout {
			msg = strings.ToUpper(msg)
		}
		for range c.Times {
			if err := ctx.Print(msg); err != nil {
				return err
			}
		}
	case echoCmd:
		return ctx.Print(strings.Join(c.Words, " "))
	case aboutCmd:
		return ctx.Markdown(aboutText)
	case panicCmd:
		panic("panic-test was invoked")
	case failCmd:
		if c.Reason == "" {
			c.Reason = "fail was invoked"
		}
		return errors.New(c.Reason)
	case exitCmd:
		ctx.Exit()
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
	return nil
}
