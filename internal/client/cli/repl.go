package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests can substitute a stub.
type execIface interface {
	isLoggedIn() bool
	status() string
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Chunks(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reprocess(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Formats(ctx context.Context) error
	Pick(args []string) error
	Upload(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error
	Preview(args []string) error
	KeysCreate(ctx context.Context) error
	KeysList(ctx context.Context) error
	KeysRevoke(ctx context.Context, args []string) error
	KeysDelete(ctx context.Context, args []string) error
	Settings(args []string) error
}

const helpLoggedOut = "Available commands: signup, login, verify, resend, preview <file>, settings, exit"

const helpLoggedIn = `Available commands:
  pick <path>            stage a file for upload
  upload [path] [...]    convert the staged or named file
  preview <path>         local preview before uploading
  watch <id>             follow processing status
  list [status]          list documents
  show <id>              document details
  chunks <id>            print extracted chunks
  export <id> [path]     write the LLM-ready JSON payload
  reprocess <id>         re-run conversion
  delete <id>            remove a document
  formats                supported file types
  keys [create|revoke|delete] list and manage API keys
  me, settings, logout, exit`

// runREPL reads commands from scanner and dispatches them until EOF or
// "exit". Handler errors are printed by the handlers themselves; the loop
// keeps going so one failed command does not end the session.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("forge %s> ", a.status()))
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
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
		case "signup", "register":
			_ = a.Signup(ctx)
		case "login":
			_ = a.Login(ctx)
		case "verify":
			_ = a.Verify(ctx)
		case "resend":
			_ = a.Resend(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "me", "whoami":
			_ = a.Me(ctx)
		case "pick":
			_ = a.Pick(args)
		case "upload", "convert":
			_ = a.Upload(ctx, args)
		case "preview":
			_ = a.Preview(args)
		case "watch":
			_ = a.Watch(ctx, args)
		case "l", "list", "ls":
			_ = a.List(ctx, args)
		case "show":
			_ = a.Show(ctx, args)
		case "chunks":
			_ = a.Chunks(ctx, args)
		case "export":
			_ = a.Export(ctx, args)
		case "reprocess":
			_ = a.Reprocess(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "formats":
			_ = a.Formats(ctx)
		case "keys":
			runKeys(ctx, a, args)
		case "settings":
			_ = a.Settings(args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// runKeys dispatches the "keys" subcommands; bare "keys" lists.
func runKeys(ctx context.Context, a execIface, args []string) {
	if len(args) == 0 {
		_ = a.KeysList(ctx)
		return
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "create":
		_ = a.KeysCreate(ctx)
	case "list":
		_ = a.KeysList(ctx)
	case "revoke":
		_ = a.KeysRevoke(ctx, rest)
	case "delete", "rm":
		_ = a.KeysDelete(ctx, rest)
	default:
		printlnFn("Usage: keys [create|list|revoke <id>|delete <id>]")
	}
}

// Run starts the interactive loop on stdin.
func (a *App) Run(ctx context.Context) {
	printlnFn("FileForge CLI (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(os.Stdin))
}
