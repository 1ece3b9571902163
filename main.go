package main

import (
	"log"

	"github.com/mkamenskiy/greenboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
