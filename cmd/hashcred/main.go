package main

import (
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/eduos-project/proctor-backend/internal/auth"
	"github.com/eduos-project/proctor-backend/internal/config"
)

// hashcred generates the bcrypt hash for the exam credential. Put the
// output in CREDENTIAL_HASH so the plaintext never reaches the server.
func main() {
	cfg := config.Load()

	fmt.Println("=== Generate Exam Credential Hash ===")

	fmt.Print("Enter Credential: ")
	byteCred, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading credential")
		return
	}
	fmt.Println()

	credential := string(byteCred)
	if len(credential) < 6 {
		fmt.Println("Error: Credential must be at least 6 characters")
		return
	}

	fmt.Print("Confirm Credential: ")
	byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading confirmation")
		return
	}
	fmt.Println()

	if credential != string(byteConfirm) {
		fmt.Println("Error: Credentials do not match")
		return
	}

	hash, err := auth.HashCredential(credential, cfg.BcryptCost)
	if err != nil {
		fmt.Printf("Error: Failed to hash credential: %v\n", err)
		return
	}

	fmt.Printf("\nCREDENTIAL_HASH=%s\n", hash)
}
