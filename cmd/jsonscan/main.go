// Command jsonscan runs a jsonpath pattern-set scan over a JSON file
// from the command line.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
