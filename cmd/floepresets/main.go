// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// We should send our own log output to stderr.
	// The cli parses os.Args itself; glog only needs its flags initialised.
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse(nil)

	cli := newPresetCli()

	// Catch INT and TERM so a running preset server can close its cache.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cli.stop()
		os.Exit(1)
	}()

	cli.run(os.Args)
	cli.stop()
	os.Exit(cli.exitCode)
}
