package main

import "github.com/platform-mesh/room-access-proxy/cmd"

func main() {
	cmd.Execute()
}
