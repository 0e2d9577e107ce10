// Command travelogctl manages the journal database: schema migrations and
// demo data.
package main

import "github.com/AlbertoOrlando/travel-journal-app/cmd/travelogctl/commands"

func main() {
	commands.Execute()
}
