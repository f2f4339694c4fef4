package commands

import (
	"fmt"

	"github.com/kphelps/akio/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("akio version %s go=%s", build.Version, build.GoVersion)
	if build.Commit != "" {
		fmt.Printf(" commit=%s", build.Commit)
	}
	fmt.Println()
}
