// Command tivatemp runs the temperature acquisition loop against a simulated
// analog front-end and reports readings over a serial link.
package main

import (
	"log"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
