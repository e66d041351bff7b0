// cmd/connector/main.go
package main

import (
	"os"

	"github.com/tamzrod/battery-modbus-connector/cmd/connector/app"
)

func main() {
	if err := app.NewConnectorCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
