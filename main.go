package main

import (
	cmd "github.com/rohmanhakim/tariff-mirror/internal/cli"
)

func main() {
	cmd.Execute()
}
