package main

import "dex-arb-watcher/internal/cli"

func main() {
	cli.Execute()
}
