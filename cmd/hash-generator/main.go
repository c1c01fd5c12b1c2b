// Command hash-generator prints the bcrypt hash for each password given on
// the command line. Useful for seeding accounts directly in the database.
package main

import (
	"fmt"
	"os"

	"github.com/mnemosyne-app/mnemo-api/internal/service/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator <password> [password...]")
		os.Exit(1)
	}

	verifier := auth.NewBcryptVerifier(0) // 0 selects the default cost
	for _, password := range os.Args[1:] {
		hash, err := verifier.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error hashing %q: %v\n", password, err)
			os.Exit(1)
		}
		fmt.Println(hash)
	}
}
