package main

import "imagedups/cmd"

func main() {
	cmd.Execute()
}
