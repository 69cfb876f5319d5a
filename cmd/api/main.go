package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "line-menu-bot",
	Short: "LINE chat bot for the shop's menu",
	Long: `line-menu-bot answers LINE Messaging API webhooks: menu keywords,
profile lookups, sticker and location echoes, and image previews.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, hashPasswordCmd)
}
