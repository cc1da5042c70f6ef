package main

import "github.com/joho/godotenv"

func main() {
	// Local development reads secrets from .env; missing file is fine.
	_ = godotenv.Load()

	Execute()
}
