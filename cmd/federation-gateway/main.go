package main

import (
	"log"

	"github.com/n9te9/federation-gateway/server"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Federation Gateway",
	Run: func(cmd *cobra.Command, args []string) {
		println("Federation Gateway v0.0.0-rc")
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new Federation Gateway project",
	Run: func(cmd *cobra.Command, args []string) {
		server.Init()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Federation Gateway server",
	Run: func(cmd *cobra.Command, args []string) {
		server.Run()
	},
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Start the schema registry, seeded from registry.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		graphs, err := server.LoadRegistryGraphs()
		if err != nil {
			log.Fatalf("failed to load registry config: %v", err)
		}
		if err := server.RunRegistry(graphs); err != nil {
			log.Fatalf("registry server failed: %v", err)
		}
	},
}

func main() {
	rootCmd := cobra.Command{}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registryCmd)

	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
