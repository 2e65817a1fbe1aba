package main

import "shuttlecast/cmd"

func main() {
	cmd.Execute()
}
