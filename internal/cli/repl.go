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
	Download(ctx context.Context, trailID string) error
	Cancel(ctx context.Context, trailID string) error
	Remove(ctx context.Context, trailID string) error
	Progress(ctx context.Context, trailID string) error
	List(ctx context.Context) error
	ShowTrail(ctx context.Context, trailID string) error
	ShowGem(ctx context.Context, gemID string) error
	Gems(ctx context.Context, trailID string) error
	Check(ctx context.Context, trailID string) error
	Refresh(ctx context.Context, trailID string) error
	RefreshAll(ctx context.Context) error
	Queue(ctx context.Context) error
	Sync(ctx context.Context) error
	Cleanup(ctx context.Context) error
	Usage(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("krawl> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		needsArg := map[string]bool{
			"download": true, "cancel": true, "remove": true, "progress": true,
			"trail": true, "gem": true, "gems": true, "check": true, "refresh": true,
		}
		if needsArg[cmd] && arg == "" {
			printlnFn("usage:", cmd, "<id>")
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: download <id>, cancel <id>, remove <id>, progress <id>,")
			printlnFn("  (l)ist, trail <id>, gem <id>, gems <trailId>, check <id>, refresh <id>,")
			printlnFn("  refreshall, queue, sync, cleanup, usage, exit")

		case "download":
			_ = a.Download(ctx, arg)

		case "cancel":
			_ = a.Cancel(ctx, arg)

		case "remove":
			_ = a.Remove(ctx, arg)

		case "progress":
			_ = a.Progress(ctx, arg)

		case "l", "list":
			_ = a.List(ctx)

		case "trail":
			_ = a.ShowTrail(ctx, arg)

		case "gem":
			_ = a.ShowGem(ctx, arg)

		case "gems":
			_ = a.Gems(ctx, arg)

		case "check":
			_ = a.Check(ctx, arg)

		case "refresh":
			_ = a.Refresh(ctx, arg)

		case "refreshall":
			_ = a.RefreshAll(ctx)

		case "queue":
			_ = a.Queue(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "cleanup":
			_ = a.Cleanup(ctx)

		case "usage":
			_ = a.Usage(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
