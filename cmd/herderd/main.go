// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package main

import (
	"log"

	"github.com/engboniface/stellar-core/node"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	flagDebug           = "debug"
	flagDataDir         = "datadir"
	flagPort            = "port"
	flagAPIPort         = "apiport"
	flagStartNewNetwork = "startnewnetwork"
)

var rootCmd = &cobra.Command{
	Use:   "herderd",
	Short: "FBA herder node",
	Run: func(cmd *cobra.Command, args []string) {
		debug, err := cmd.Flags().GetBool(flagDebug)
		check(err)
		datadir, err := cmd.Flags().GetString(flagDataDir)
		check(err)
		port, err := cmd.Flags().GetInt(flagPort)
		check(err)
		apiPort, err := cmd.Flags().GetInt(flagAPIPort)
		check(err)
		startNewNetwork, err := cmd.Flags().GetBool(flagStartNewNetwork)
		check(err)

		config := node.DefaultConfig
		config.Debug = debug
		config.Datadir = datadir
		config.Port = port
		config.APIPort = apiPort
		config.HerderConfig.StartNewNetwork = startNewNetwork

		color.Green("starting herder node on port %d (api :%d)", config.Port, config.APIPort)
		node.Run(config)
	},
}

func main() {
	check(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().Bool(flagDebug, false, "debug mode")
	rootCmd.PersistentFlags().StringP(flagDataDir, "d", "", "node data directory (nodekey, genesis.json, peers.json)")
	rootCmd.MarkPersistentFlagRequired(flagDataDir)

	rootCmd.Flags().IntP(flagPort, "p", node.DefaultConfig.Port, "p2p listen port")
	rootCmd.Flags().Int(flagAPIPort, node.DefaultConfig.APIPort, "http api port")
	rootCmd.Flags().Bool(flagStartNewNetwork, false, "bootstrap a brand-new network instead of syncing")
}

func check(err error) {
	if err != nil {
		color.Red("%v", err)
		log.Fatal(err)
	}
}
