// @title Moonly Messenger
// @version 0.1
// @description Chat backend: direct/group chats, friend requests and store-and-poll call signaling.

// @host localhost:8080
// @BasePath /api
// @query.collection.format multi
// @schemes http

package main

import (
	"log"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/app"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	app.Run(cfg)
}
