package main

import (
	"log"

	"github.com/joho/godotenv"

	"StockSentinel/internal/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file, using environment")
	}
	cmd.Execute()
}
