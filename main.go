package main

import (
	"log"

	"github.com/kayaan/driver-gtm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
