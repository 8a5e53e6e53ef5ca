package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// Prints a random API key suitable for the API_KEY environment variable.
func main() {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API_KEY=cm_%s\n", hex.EncodeToString(buf))
}
