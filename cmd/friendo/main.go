package main

import (
	"github.com/friendo-bot/friendo/cmd/friendo/subcmd"
)

func main() {
	subcmd.Execute()
}
