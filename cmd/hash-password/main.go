// Command hash-password prints the bcrypt hash to store in the Login sheet.
//
// Usage:
//
//	hash-password <secret>
//	echo -n <secret> | hash-password
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"lifedash/internal/auth"
)

func main() {
	secret, err := readSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash-password:", err)
		os.Exit(1)
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash-password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readSecret() (string, error) {
	if len(os.Args) > 1 {
		return strings.TrimSpace(os.Args[1]), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return "", fmt.Errorf("empty secret")
	}
	return line, nil
}
