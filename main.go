package main

import "doge-savings-scraper/commands"

func main() {
	commands.Execute()
}
