package main

import "github.com/RyanBlaney/sonido-eeg/cmd"

func main() {
	cmd.Execute()
}
