package main

import (
	"github.com/joho/godotenv"

	"github.com/jafshop/medallion/cmd"
)

func main() {
	// .env is optional; real deployments set environment variables
	_ = godotenv.Load()

	cmd.Execute()
}
