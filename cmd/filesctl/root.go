package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/radif/filegate/internal/client"
)

const defaultServer = "http://localhost:8080"

var serverURL string

var rootCmd = &cobra.Command{
	Use:          "filesctl",
	Short:        "Upload, list, download and delete files on a file gateway",
	Long:         `A command-line client for the file gateway. Point it at a server with --server or FILESCTL_SERVER.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	server := os.Getenv("FILESCTL_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", server, "gateway base URL")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
}

func newClient() *client.Client {
	return client.New(serverURL, nil)
}
