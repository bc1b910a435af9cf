package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

var errUnknownCommand = errors.New("unknown command")

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it;
// tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GitHubLogin(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

// dispatch runs a single command by name.
func dispatch(ctx context.Context, a execIface, cmd string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "github":
		return a.GitHubLogin(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "refresh":
		return a.Refresh(ctx)
	case "logout":
		return a.Logout(ctx)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

// runREPL reads commands line by line until EOF, "exit" or "quit".
// Command errors are already reported by the handlers, so the loop only
// keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("Daily journal CLI (type 'help' for commands)")
	for {
		printlnFn(fmt.Sprintf("journal%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, logout, exit")
			} else {
				printlnFn("Available commands: register, login, github, exit")
			}
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			if err := dispatch(ctx, a, cmd); errors.Is(err, errUnknownCommand) {
				printlnFn("Unknown command:", cmd)
			}
		}
	}
}
