package cmd

import (
	"fmt"

	"shuttlecast/config"
	"shuttlecast/core/media"

	"github.com/spf13/cobra"
)

var mimeCmd = &cobra.Command{
	Use:   "mime <file>...",
	Short: "显示文件会以何种 Content-Type 提供",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resolver := media.NewMimeResolver(config.Load().Cast.MimeTypes)
		for _, name := range args {
			contentType, ok := resolver.Lookup(name)
			if !ok {
				contentType = media.DefaultContentType + " (fallback)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, contentType)
		}
	},
}

func init() {
	rootCmd.AddCommand(mimeCmd)
}
