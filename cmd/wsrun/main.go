package main

import (
	"github.com/wsrun/wsrun/cmd"
	"github.com/wsrun/wsrun/pkg/logger"
)

func main() {
	defer func() { _ = logger.Sync() }()
	cmd.Execute()
}
