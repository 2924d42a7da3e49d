package main

import (
	"log"

	"github.com/signlab/pjmsign/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("pjmsign: %v", err)
	}
}
