// Command canvass inspects and maintains a canvass CRM database.
package main

import "github.com/mesh-intelligence/canvass/internal/cli"

func main() {
	cli.Execute()
}
