package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives.
type execIface interface {
	UserAdd(ctx context.Context) error
	PostAdd(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	SetImage(ctx context.Context, postID, attachmentID string) error
	ListPosts(ctx context.Context) error
	ListMedia(ctx context.Context, search string) error
}

const helpText = "Available commands: useradd, postadd, upload <file>, setimage <post_id> <attachment_id>, posts, media [search], exit"

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit". Handler errors are printed and the loop continues. Commands share
// reader with a so their prompts see the following lines.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printlnFn("fis> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "useradd":
			err = a.UserAdd(ctx)
		case "postadd":
			err = a.PostAdd(ctx)
		case "upload":
			if len(args) != 1 {
				printlnFn("Usage: upload <file>")
				continue
			}
			err = a.Upload(ctx, args[0])
		case "setimage":
			if len(args) != 2 {
				printlnFn("Usage: setimage <post_id> <attachment_id>")
				continue
			}
			err = a.SetImage(ctx, args[0], args[1])
		case "posts":
			err = a.ListPosts(ctx)
		case "media":
			err = a.ListMedia(ctx, strings.Join(args, " "))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
