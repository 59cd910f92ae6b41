package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/spherefall/assets"
	"github.com/milk9111/spherefall/config"
	"github.com/milk9111/spherefall/ecs/system"
	"github.com/milk9111/spherefall/inspector"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.ConfigPath, !flags.ConfigPathSet())
	if err != nil {
		log.Fatal(err)
	}
	flags.Apply(&cfg)
	system.Debug = cfg.Debug
	assets.Debug = cfg.Debug

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	source := assets.DefaultSource(cfg.Levels.Dir)
	server := assets.NewServer(source)
	defer func() {
		if err := server.Close(); err != nil {
			log.Printf("assets: close: %v", err)
		}
	}()
	if cfg.Levels.Watch {
		if err := server.Watch(ctx); err != nil && !errors.Is(err, assets.ErrNoWatchDir) {
			log.Printf("hot reload disabled: %v", err)
		}
	}

	var pub system.Publisher
	if cfg.Inspector.Addr != "" {
		hub := inspector.NewHub(nil)
		pub = hub
		go func() {
			if err := inspector.ListenAndServe(ctx, cfg.Inspector.Addr, hub); err != nil {
				log.Printf("inspector: %v", err)
			}
		}()
		log.Printf("inspector listening on ws://%s/ws", cfg.Inspector.Addr)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	game := NewGame(cfg, server, source.Names(), pub)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
