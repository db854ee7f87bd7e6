package main

import "github.com/theirongolddev/paytrack/cmd"

func main() {
	cmd.Execute()
}
