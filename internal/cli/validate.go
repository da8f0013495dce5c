package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/pkg/document"
	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
)

// errInvalidDocument is returned after the problem was already printed.
var errInvalidDocument = errors.New("document is not valid")

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a file is a valid diagram document",
		Long: `Check that a file is valid JSON without duplicate keys inside the same
object, the same check the editor applies before updating a diagram.

On failure the message and the 1-based line of the problem are printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(path string) error {
	v, err := document.ImportFile(path)
	if err != nil {
		if derrors.Is(err, derrors.ErrCodeFileNotFound) || derrors.Is(err, derrors.ErrCodeInvalidPath) {
			return err
		}
		printProblem(path, derrors.UserMessage(err), derrors.LineOf(err))
		return errInvalidDocument
	}
	printSuccess("%s is valid (%s root)", path, v.Kind)
	return nil
}
