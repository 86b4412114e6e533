// main is the entry point for the podium CLI.
package main

import (
	"github.com/huangsam/podium/cmd"
	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseCaching()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
