package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/campus-lab/campusboard/pkg/cli"
)

func main() {
	// Missing .env is fine, environment variables still apply
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
