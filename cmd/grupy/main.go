package main

import "grupy/cmd/grupy/cmd"

func main() {
	cmd.Execute()
}
