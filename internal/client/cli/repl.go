package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Set(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Duplicate(ctx context.Context) error
	Remove(ctx context.Context) error
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
	Show(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	ExportServer(ctx context.Context, args []string) error
	Exports(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const (
	helpGuest = "Available commands: login, (l)ist [sort=<order>] [search], open <id>, add, set <field> <value>, select <n>, dup, del, undo, redo, show, export [quality], export-server [quality], exports, exit"
	helpAdmin = "Available commands: logout, (l)ist [sort=<order>] [search], open <id>, upload <files...>, delete <id>, add, set <field> <value>, select <n>, dup, del, undo, redo, show, export [quality], export-server [quality], exports, exit"
)

// errUnknownCommand is returned by dispatch for names it does not know.
var errUnknownCommand = errors.New("unknown command")

// runREPL reads a line from scanner, parses the first token as the command
// and dispatches to a. Errors are printed and the loop continues. It returns
// on scanner EOF, on "exit"/"quit" or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pg %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpAdmin)
			} else {
				printlnFn(helpGuest)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		err := dispatch(ctx, a, cmd, args)
		switch {
		case errors.Is(err, errUnknownCommand):
			printlnFn("Unknown command:", cmd)
		case err != nil:
			printlnFn("Error:", err)
		}
	}
}

// dispatch runs one command against a.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "l", "list":
		return a.List(ctx, args)
	case "open":
		return a.Open(ctx, args)
	case "add":
		return a.Add(ctx)
	case "set":
		return a.Set(ctx, args)
	case "select":
		return a.Select(ctx, args)
	case "dup":
		return a.Duplicate(ctx)
	case "del":
		return a.Remove(ctx)
	case "undo":
		return a.Undo(ctx)
	case "redo":
		return a.Redo(ctx)
	case "show":
		return a.Show(ctx)
	case "export":
		return a.Export(ctx, args)
	case "export-server":
		return a.ExportServer(ctx, args)
	case "exports":
		return a.Exports(ctx)
	case "upload":
		return a.Upload(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	}
	return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
}
