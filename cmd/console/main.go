// Command console runs the tutoring dialogue as a local terminal loop,
// with in-memory stores. Handy for trying content changes without the
// server, Redis or Postgres.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fennlabs/fennlingo/internal/classify"
	"github.com/fennlabs/fennlingo/internal/content"
	"github.com/fennlabs/fennlingo/internal/dialogue"
	"github.com/fennlabs/fennlingo/internal/progress"
)

func main() {
	// Keep structured logs out of the conversation.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	path := os.Getenv("FENN_CONTENT_PATH")
	if path == "" {
		path = "./content"
	}
	catalog, err := content.NewCatalog(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading content from %s: %v\n", path, err)
		os.Exit(1)
	}

	store := progress.NewMemory()
	engine := dialogue.NewEngine(dialogue.EngineConfig{
		Catalog:     catalog,
		Classifier:  classify.Keyword{},
		Progress:    store,
		Corrections: store,
	})

	fmt.Println("Fennlingo console. Greet the bot to start (e.g. 'salut fenn'); Ctrl-D to quit.")

	ctx := context.Background()
	var sess *dialogue.Session
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		reply, next := engine.ProcessTurn(ctx, dialogue.Turn{
			UserID:  "console",
			Input:   scanner.Text(),
			Session: sess,
		})
		sess = &next

		for _, segment := range reply.Segments {
			fmt.Println(segment.Text)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
}
