package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain and its validation verdict.",
	Run:   chainRun,
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Print the genesis configuration.",
	Run:   genesisRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(genesisCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	get(fmt.Sprintf("%s/v1/chain/list", url))
}

func genesisRun(cmd *cobra.Command, args []string) {
	get(fmt.Sprintf("%s/v1/genesis/list", url))
}

// get performs a GET against the node and prints the raw response body.
func get(endpoint string) {
	resp, err := http.Get(endpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(body))
}
