package main

import (
	"fmt"
	"os"
	"strings"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) > 1 && strings.TrimSpace(os.Args[1]) == "submit" {
		if err := runSubmit(os.Stdout, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
			return exitFailure
		}
		return exitSuccess
	}
	if len(os.Args) > 1 && strings.TrimSpace(os.Args[1]) == "doctor" {
		if err := runDoctor(os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "doctor failed: %v\n", err)
			return exitFailure
		}
		return exitSuccess
	}

	fmt.Fprintln(os.Stderr, "usage: agentgatectl <submit|doctor>")
	return exitFailure
}
