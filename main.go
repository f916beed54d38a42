package main

import "github.com/KaramelBytes/swissknife/cmd"

func main() {
	cmd.Execute()
}
