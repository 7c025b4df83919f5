package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Setup(ctx context.Context) error
	Reset(ctx context.Context) error
	Enroll2FA(ctx context.Context) error
	Status(ctx context.Context) error
	Refresh(ctx context.Context) error
	Servers(ctx context.Context) error
	CreateServer(ctx context.Context) error
	EditServer(ctx context.Context, id string) error
	ServerAction(ctx context.Context, action, id string) error
	DeleteServer(ctx context.Context, id string) error
	Resources(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the panel CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - reset          — recover a forgotten password
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - status         — show session info
//	  - refresh        — extend the session
//	  - servers        — list game servers
//	  - create         — create a game server
//	  - edit <id>      — change a server's settings
//	  - resources      — show host CPU/memory/disk usage
//	  - start <id>     — start a server
//	  - stop <id>      — stop a server
//	  - restart <id>   — restart a server
//	  - delete <id>    — delete a server
//	  - enroll-2fa     — set up an authenticator app
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tac %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, refresh, servers, create, edit <id>, resources, start <id>, stop <id>, restart <id>, delete <id>, enroll-2fa, logout, exit")
			} else {
				printlnFn("Available commands: login, reset, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "setup":
			_ = a.Setup(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "enroll-2fa":
			_ = a.Enroll2FA(ctx)

		case "status":
			_ = a.Status(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "servers":
			_ = a.Servers(ctx)

		case "create":
			_ = a.CreateServer(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditServer(ctx, args[0])

		case "resources":
			_ = a.Resources(ctx)

		case "start", "stop", "restart":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			_ = a.ServerAction(ctx, cmd, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.DeleteServer(ctx, args[0])

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
