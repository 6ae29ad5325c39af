package main

import (
	"github.com/AxelF0/whatsapp-system/cmd"
)

func main() {
	cmd.Execute()
}
