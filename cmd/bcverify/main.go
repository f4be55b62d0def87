// Command bcverify verifies batches of Bandcamp download codes against the
// remote verification endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bcverify",
	Short: "bcverify checks batches of Bandcamp download codes.",
	Long: `bcverify drives a list of download codes through the Bandcamp code
verification endpoint, one paced call at a time, and reports the outcome of
every code. Credentials (crumb, client_id and session cookies) come from
flags, the environment or a .env file.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
