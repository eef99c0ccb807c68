package main

import (
	"github.com/joho/godotenv"

	"github.com/mcoot/crosswordduel/internal/cli"
)

func main() {
	// Optional .env with CROSSWORDDUEL_* settings
	_ = godotenv.Load()

	cli.Execute()
}
