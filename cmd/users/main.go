// Command users serves the user management API.
package main

import (
	"log"

	"github.com/patric-chuzhbe/usrlinks/internal/app"
)

func main() {
	application, err := app.NewUsers()
	if err != nil {
		log.Fatalf("users: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Printf("users: %v", err)
	}
}
