package main

import "github.com/apeterson91/rndpp/cmd"

// TODO: checkpointing for chains (so a long fit can be frozen and continued)

func main() {
	cmd.Execute()
}
