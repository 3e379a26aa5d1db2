package main

import (
	"guild-metrics/bot"
	"guild-metrics/handlers"
)

func main() {
	bot.Run(handlers.Register)
}
