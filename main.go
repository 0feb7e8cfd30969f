package main

import "github.com/theirongolddev/firetrack/cmd"

func main() {
	cmd.Execute()
}
