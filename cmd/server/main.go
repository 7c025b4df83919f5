package main

import (
	"context"
	"log"
	"os"

	"github.com/dkarlovs/tacpanel/internal/buildinfo"
	"github.com/dkarlovs/tacpanel/internal/server"
	"github.com/dkarlovs/tacpanel/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
