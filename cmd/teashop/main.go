package main

import (
	"log"

	"github.com/joho/godotenv"

	"teashop/core/cmd"
	"teashop/internal/bot"
)

func main() {
	// .env is optional; containerized deployments pass real env vars
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	if err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig:        bot.LoadConfig,
		Bootstrap:         bot.Bootstrap,
	}); err != nil {
		log.Fatalf("teashop: %v", err)
	}
}
