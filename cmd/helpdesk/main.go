package main

import "github.com/vndesk/helpdesk/internal/cli"

func main() {
	cli.Execute()
}
