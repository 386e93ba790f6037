package main

import (
	"bvnet/cfg"
	"bvnet/node"
	"bvnet/util"
	"bvnet/util/log"
	"bvnet/version"

	"flag"
	"fmt"
	"os"
)

func main() {
	logger := log.New(os.Stderr)

	cfgfile := flag.String("config", "config.toml", "configurations")
	rootDir := flag.String("root", "", "root directory, overrides the configured one")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	config, err := cfg.LoadConfig(*cfgfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %#v\n", err)
		os.Exit(1)
	}
	if *rootDir != "" {
		config.RootDir = *rootDir
	}

	if config.LogLevel != "" {
		level, err := log.ParseLevel(config.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR: %#v\n", err)
			os.Exit(1)
		}
		log.SetLevel(level)
	}

	node, err := node.NewNode(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %#v\n", err)
		os.Exit(1)
	}
	if err := node.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %#v\n", err)
		os.Exit(1)
	}
	util.TrapSignalTerm(func(sig os.Signal) {
		fmt.Printf("captured %v, exiting...\n", sig)
		node.Stop()
	})
	node.WaitForStop()
}
