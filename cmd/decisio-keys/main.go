// decisio-keys generates and hashes Decisio API keys. The raw key is printed
// exactly once; config files should carry only the sha256 digest.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/decisio-ai/decisio/internal/auth"
)

func main() {
	root := &cobra.Command{
		Use:   "decisio-keys",
		Short: "Manage Decisio API keys",
	}
	root.AddCommand(generateCmd(), hashCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var test bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new API key and its config digest",
		Run: func(cmd *cobra.Command, args []string) {
			key := auth.GenerateKey(test)
			fmt.Printf("api key:  %s\n", key)
			fmt.Printf("config:   sha256:%s\n", auth.HashKey(key))
			fmt.Println("\nStore the raw key with the customer; it cannot be recovered later.")
		},
	}
	cmd.Flags().BoolVar(&test, "test", false, "generate a dk_test_ sandbox key")
	return cmd
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <key>",
		Short: "Print the config digest for an existing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !auth.ValidKeyFormat(args[0]) {
				return fmt.Errorf("not a valid decisio API key")
			}
			fmt.Printf("sha256:%s\n", auth.HashKey(args[0]))
			return nil
		},
	}
}
