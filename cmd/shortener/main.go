// Command shortener serves the in-memory URL shortener.
package main

import (
	"log"

	"github.com/patric-chuzhbe/usrlinks/internal/app"
	"github.com/patric-chuzhbe/usrlinks/internal/config"
)

const defaultRunAddr = ":5001"

func main() {
	application, err := app.NewShortener(config.WithDefaultRunAddr(defaultRunAddr))
	if err != nil {
		log.Fatalf("shortener: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Printf("shortener: %v", err)
	}
}
