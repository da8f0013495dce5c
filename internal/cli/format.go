package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/pkg/document"
)

// formatCommand exports a document the way the editor's export button does.
func (c *CLI) formatCommand() *cobra.Command {
	var dir, name string

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Export a document as data.json with 2-space indentation",
		Long: `Export a document as JSON indented with two spaces, keeping member
order. The file is written as data.json unless --name says otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := document.ImportFile(args[0])
			if err != nil {
				return err
			}
			path, err := document.ExportFileNamed(dir, name, v)
			if err != nil {
				return err
			}
			printSuccess("Exported document")
			printFile(path)
			printNextStep("Explore it", appName+" explore "+path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&name, "name", document.ExportName, "output file name")
	return cmd
}
