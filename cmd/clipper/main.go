// Command clipper turns a long-form video into a ranked set of short,
// captioned vertical clips. It can run a single source video end to end,
// serve an HTTP ingest API, or drain that API's job queue as a worker.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "clipper",
		Short: "Extract and rank short-form clips from long-form video",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newWorkerCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
