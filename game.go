package main

import (
	"fmt"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/spherefall/assets"
	"github.com/milk9111/spherefall/config"
	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/system"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type appState int

const (
	stateMainMenu appState = iota
	stateLoading
	stateInGame
	statePauseMenu
)

func (s appState) String() string {
	switch s {
	case stateMainMenu:
		return "main menu"
	case stateLoading:
		return "loading"
	case stateInGame:
		return "in game"
	case statePauseMenu:
		return "paused"
	}
	return fmt.Sprintf("appState(%d)", int(s))
}

type Game struct {
	frames int
	state  appState
	quit   bool

	world      *ecs.World
	scheduler  *ecs.Scheduler
	levelState ecs.Entity

	server  *assets.Server
	input   *system.InputSystem
	levels  *system.LevelSystem
	physics *system.PhysicsSystem
	loaded  *ecs.EventReader[system.LevelLoaded]

	mainMenu *ebitenui.UI
	pauseUI  *ebitenui.UI
	selected assets.Handle
	deaths   int
}

// NewGame wires the systems in tick order. pub may be nil.
func NewGame(cfg config.Config, server *assets.Server, names []string, pub system.Publisher) *Game {
	g := &Game{
		world:  ecs.NewWorld(),
		server: server,
		loaded: ecs.NewEventReader(system.LevelLoadedEvents),
	}

	g.levelState = g.world.CreateEntity()
	if err := ecs.Add(g.world, g.levelState, component.LevelStateComponent.Kind(), &component.LevelState{}); err != nil {
		panic("game: add level state: " + err.Error())
	}

	g.input = system.NewInputSystem()
	g.levels = system.NewLevelSystem(server)
	g.physics = system.NewPhysicsSystem()
	g.physics.SetActive(false)

	players := system.NewPlayerSystem()
	players.Torque = cfg.Player.Torque
	camera := system.NewCameraSystem()
	camera.Sensitivity = cfg.Player.MouseSpeed
	death := system.NewDeathSystem()
	death.OnDeath = func(player, killer ecs.Entity) {
		g.deaths++
		if pub != nil {
			pub.Publish("death", map[string]any{"killer": uint64(killer), "deaths": g.deaths})
		}
	}

	g.scheduler = ecs.NewScheduler(
		system.NewAssetEventSystem(server),
		g.levels,
		players,
		system.NewPlayerControllerSystem(),
		g.physics,
		death,
		system.NewRespawnSystem(),
		camera,
	)
	if pub != nil {
		g.scheduler.Add(system.NewInspectorSystem(pub))
	}

	g.mainMenu = NewMainMenuUI(g, names)
	g.pauseUI = NewPauseUI(g)

	if cfg.Levels.Start != "" {
		g.selectLevel(assets.LevelPath(cfg.Levels.Start))
	}
	return g
}

func (g *Game) setState(s appState) {
	if s == g.state {
		return
	}
	log.Printf("Game: %s -> %s", g.state, s)
	g.state = s
	g.physics.SetActive(s == stateInGame)
	if s == stateInGame {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		g.input.Reset()
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
}

func (g *Game) setDesiredLevel(h assets.Handle) {
	state, ok := ecs.Get(g.world, g.levelState, component.LevelStateComponent.Kind())
	if !ok {
		return
	}
	state.Handle = h
	g.selected = h
}

func (g *Game) selectLevel(name string) {
	g.setDesiredLevel(g.server.Load(name))
	g.loaded.Clear(g.world)
	g.setState(stateLoading)
}

func (g *Game) resume() {
	g.setState(stateInGame)
}

func (g *Game) toMainMenu() {
	g.setDesiredLevel(assets.Handle{})
	g.setState(stateMainMenu)
}

// requestReload asks the level system to re-read the current level file.
func (g *Game) requestReload() {
	e := g.world.CreateEntity()
	if err := ecs.Add(g.world, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{}); err != nil {
		log.Printf("Game: request reload: %v", err)
		g.world.DestroyEntity(e)
	}
}

func (g *Game) Update() error {
	g.frames++

	switch g.state {
	case stateMainMenu:
		g.mainMenu.Update()
	case stateLoading:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.toMainMenu()
		}
	case stateInGame:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.setState(statePauseMenu)
			break
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.requestReload()
		}
		g.input.Update(g.world)
	case statePauseMenu:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.resume()
			break
		}
		g.pauseUI.Update()
	}
	if g.quit {
		return ebiten.Termination
	}

	g.scheduler.Update(g.world)

	if len(g.loaded.Read(g.world)) > 0 && g.state == stateLoading {
		g.setState(stateInGame)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	switch g.state {
	case stateMainMenu:
		g.mainMenu.Draw(screen)
		return
	case stateLoading:
		msg := fmt.Sprintf("Loading %s...", g.selected.Path)
		if err := g.server.Err(g.selected); err != nil {
			msg = fmt.Sprintf("Failed to load %s:\n%v\n\nFix the file to retry, or press Escape.", g.selected.Path, err)
		}
		ebitenutil.DebugPrintAt(screen, msg, 10, 10)
		return
	}

	system.DrawLevelDebug(g.world, screen)
	system.DrawStatus(g.world, screen, g.levels, g.physics)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  Deaths: %d  [R] reload  [Esc] pause", ebiten.ActualFPS(), g.deaths), 10, baseHeight-20)
	if g.state == statePauseMenu {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
