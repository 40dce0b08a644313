package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [json|yaml|text]",
	Short: "Export the chain in the specified format.",
	Args:  cobra.ExactArgs(1),
	Run:   exportRun,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File to write the export to, stdout when empty.")
}

func exportRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/export/%s", url, args[0]))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("export failed: %s", body)
	}

	if exportOutput == "" {
		fmt.Println(string(body))
		return
	}

	if err := os.WriteFile(exportOutput, body, 0644); err != nil {
		log.Fatal(err)
	}

	fmt.Println("wrote", exportOutput)
}
