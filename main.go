package main

import (
	"prediction-dashboard/internal/cli"
)

func main() {
	cli.Execute()
}
