package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand(log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "imagemeta",
		Short:         "Image metadata extraction without pixel decoding",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCommand(log))
	return root
}
