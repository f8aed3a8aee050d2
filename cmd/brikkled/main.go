package main

import (
	"fmt"
	"os"

	"github.com/brikkle/chatbot/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "brikkled",
		Short: "Brikkle chatbot daemon",
		Long:  "Brikkle customer-support chatbot daemon for serving the chat API and managing the vector index",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IndexCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
