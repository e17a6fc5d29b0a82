package main

import "github.com/whiteboxllms/clever-widget-factory-sub001/cmd"

func main() {
	cmd.Execute()
}
