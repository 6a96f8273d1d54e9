package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mints a development JWT for exercising protected routes with curl.
// Usage: JWT_SECRET=devsecret go run scripts/gentoken.go <user-id> <email>
func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("JWT_SECRET is required")
		os.Exit(1)
	}

	sub := "dev-user-1"
	email := "dev@localhost"
	if len(os.Args) > 1 {
		sub = os.Args[1]
	}
	if len(os.Args) > 2 {
		email = os.Args[2]
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
