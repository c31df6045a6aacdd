// chatlog - Chat Export Parser
//
// chatlog reads plain-text chat exports and turns them into an ordered list
// of messages that can be printed, archived, served or posted to webhooks.
package main

import (
	"os"

	"github.com/ccollicutt/chatlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
