package main

import "github.com/jagostokes/zipline-data-analytics-p1v1/cmd"

func main() {
	cmd.Execute()
}
