package main

import (
	"os"

	"chats/internal/app"
)

// @title                       chats API
// @version                     1.0
// @description                 Chat backend: accounts, chats, message history and live chat over websocket.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	os.Exit(app.Run(os.Args[1:]))
}
