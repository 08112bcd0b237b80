// cmd/aloftview/main.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// aloftview is a terminal viewer for flight simulation scenarios: the
// map and actors drawn live, an event ticker, and enough keybindings
// to pause, rescale time, inspect actors, and issue orders.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aloft-sim/aloft/log"
	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/sim"
	"github.com/aloft-sim/aloft/terrain"
	"github.com/aloft-sim/aloft/util"

	"github.com/gdamore/tcell/v2"
)

var (
	logLevel         = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "log file directory")
	scenarioFilename = flag.String("scenario", "", "filename of JSON file with a scenario definition")
	mapsFilename     = flag.String("maps", "", "filename of a map library to use instead of the built-in maps")
	startPaused      = flag.Bool("paused", false, "start with the simulation paused")
)

// AppState holds the runtime state of the viewer.
type AppState struct {
	sim    *sim.Sim
	events *sim.EventsSubscription
	ticker *util.RingBuffer[string]

	// terrain is the world's map. The simulation never mutates terrain
	// once built, so the render loop reads it without taking the sim
	// lock.
	terrain *terrain.Map

	cursor   math.Cell
	selected sim.ActorID
	rate     float32
	paused   bool
	inspect  bool

	snap *sim.StateSnapshot
}

// Action represents the result of handling an event.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
)

func main() {
	flag.Parse()
	lg := log.New(*logLevel, *logDir)

	lib := terrain.DefaultLibrary()
	if *mapsFilename != "" {
		var err error
		if lib, err = terrain.LoadFile(*mapsFilename); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *mapsFilename, err)
			os.Exit(1)
		}
	}

	sc := sim.DefaultScenario()
	if *scenarioFilename != "" {
		sc = &sim.Scenario{}
		if err := util.LoadJSONFile(*scenarioFilename, sc); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *scenarioFilename, err)
			os.Exit(1)
		}
	}
	var e util.ErrorLogger
	sc.PostDeserialize(&e)
	if e.HaveErrors() {
		fmt.Fprint(os.Stderr, e.String())
		os.Exit(1)
	}

	w, err := sc.Build(lib, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	state := &AppState{
		sim:     sim.NewSim(w, lg),
		ticker:  util.NewRingBuffer[string](64),
		terrain: w.Terrain,
		cursor:  math.Cell{X: w.Terrain.Width / 2, Y: w.Terrain.Height / 2},
		rate:    1,
	}
	state.events = state.sim.Subscribe()
	if *startPaused {
		state.sim.TogglePause()
		state.paused = true
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	// The simulation advances on a frame ticker; input arrives on its
	// own channel so a quiet keyboard does not stall the clock.
	evCh := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			evCh <- ev
		}
	}()

	frame := time.NewTicker(33 * time.Millisecond)
	defer frame.Stop()

	for {
		select {
		case <-frame.C:
			state.sim.Update()
			state.snap = state.sim.Snapshot()
			state.drainEvents()
			render(screen, state)
			screen.Show()

		case ev := <-evCh:
			if handleEvent(ev, state, screen, lg) == ActionQuit {
				return
			}
			render(screen, state)
			screen.Show()
		}
	}
}

// drainEvents folds new simulation events into the ticker, skipping
// the movement chatter that would drown everything else out.
func (state *AppState) drainEvents() {
	for _, ev := range state.events.Get() {
		if ev.Type == sim.MovementChangedEvent {
			continue
		}
		state.ticker.Add(ev.String())
	}
}

func handleEvent(ev tcell.Event, state *AppState, screen tcell.Screen, lg *log.Logger) Action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
		return ActionNone

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			if state.inspect {
				state.inspect = false
				return ActionNone
			}
			return ActionQuit

		case tcell.KeyUp:
			state.cursor.Y--
		case tcell.KeyDown:
			state.cursor.Y++
		case tcell.KeyLeft:
			state.cursor.X--
		case tcell.KeyRight:
			state.cursor.X++

		case tcell.KeyEnter:
			if a := state.actorAtCursor(); a != nil {
				state.selected = a.ID
				state.inspect = true
			} else {
				state.inspect = false
			}

		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return ActionQuit
			case ' ':
				state.sim.TogglePause()
				state.paused = !state.paused
			case '.':
				state.sim.SingleStep()
				state.paused = true
			case '+', '=':
				state.rate = min(state.rate*2, 16)
				state.sim.SetSimRate(state.rate)
			case '-':
				state.rate = max(state.rate/2, 0.25)
				state.sim.SetSimRate(state.rate)
			case 'd':
				if state.selected != 0 {
					lg.Infof("actor dump:\n%s", state.sim.DumpActor(state.selected))
				}
			case 'm':
				if state.selected != 0 {
					state.sim.PostOrder(sim.Order{Kind: sim.OrderMove,
						Actor: state.selected, Cell: state.cursor})
				}
			case 'x':
				if state.selected != 0 {
					state.sim.PostOrder(sim.Order{Kind: sim.OrderStop, Actor: state.selected})
				}
			case 'b':
				if state.selected != 0 {
					state.sim.PostOrder(sim.Order{Kind: sim.OrderReturnToBase, Actor: state.selected})
				}
			case 'u':
				if state.selected != 0 {
					state.sim.PostOrder(sim.Order{Kind: sim.OrderUnload, Actor: state.selected})
				}
			case 'p':
				if a := state.actorAtCursor(); a != nil && state.selected != 0 {
					state.sim.PostOrder(sim.Order{Kind: sim.OrderPickupUnit,
						Actor: state.selected, Target: a.ID})
				}
			case 'v':
				if state.selected != 0 {
					state.sim.PostOrder(sim.Order{Kind: sim.OrderDeliverUnit,
						Actor: state.selected, Cell: state.cursor})
				}
			}
		}
	}

	if state.snap != nil {
		state.cursor.X = max(0, min(state.cursor.X, state.snap.Width-1))
		state.cursor.Y = max(0, min(state.cursor.Y, state.snap.Height-1))
	}
	return ActionNone
}

// actorAtCursor returns the first live actor drawn in the cursor cell.
func (state *AppState) actorAtCursor() *sim.ActorSnapshot {
	if state.snap == nil {
		return nil
	}
	for i, a := range state.snap.Actors {
		if a.InWorld && a.Cell == state.cursor {
			return &state.snap.Actors[i]
		}
	}
	return nil
}

func terrainRune(name string) (rune, tcell.Style) {
	switch name {
	case "Water":
		return '~', tcell.StyleDefault.Foreground(tcell.ColorBlue)
	case "Rock":
		return '#', tcell.StyleDefault.Foreground(tcell.ColorGray)
	case "Road":
		return '=', tcell.StyleDefault.Foreground(tcell.ColorDarkGoldenrod)
	case "Rough":
		return ':', tcell.StyleDefault.Foreground(tcell.ColorOlive)
	default:
		return '.', tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	}
}

func actorRune(name string) rune {
	switch name {
	case "transport":
		return 'T'
	case "gunship":
		return 'G'
	case "harvester":
		return 'H'
	case "infantry":
		return 'i'
	case "pad":
		return 'P'
	case "crate":
		return 'c'
	default:
		if name == "" {
			return '?'
		}
		return rune(strings.ToUpper(name[:1])[0])
	}
}

func render(screen tcell.Screen, state *AppState) {
	screen.Clear()
	width, height := screen.Size()
	snap := state.snap
	if snap == nil {
		drawText(screen, 0, 0, width, tcell.StyleDefault, "waiting for first snapshot...")
		return
	}

	styleHeader := tcell.StyleDefault.Bold(true).Reverse(true)
	styleAir := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleGround := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSelected := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleCursor := tcell.StyleDefault.Reverse(true)
	styleHelp := tcell.StyleDefault.Foreground(tcell.ColorGray)

	// Header
	pauseStr := ""
	if state.paused {
		pauseStr = " PAUSED"
	}
	title := fmt.Sprintf(" %s  tick %d  rate %gx%s  %d actors ",
		snap.MapName, snap.Tick, state.rate, pauseStr, len(snap.Actors))
	drawText(screen, 0, 0, width, styleHeader, title)

	// Layout: map on the left, ticker to its right, help and cursor
	// info on the bottom rows.
	mapTop, mapRows := 1, height-3
	tickerX := min(snap.Width+2, width/2)

	// Keep the cursor inside the viewport when the map is larger than
	// the screen.
	offX := max(0, min(state.cursor.X-tickerX/2, snap.Width-tickerX))
	offY := max(0, min(state.cursor.Y-mapRows/2, snap.Height-mapRows))

	for row := range mapRows {
		cy := offY + row
		if cy >= snap.Height {
			break
		}
		for col := range tickerX - 2 {
			cx := offX + col
			if cx >= snap.Width {
				break
			}
			r, style := terrainRune(state.terrain.TerrainTypeAt(math.Cell{X: cx, Y: cy}).Name)
			screen.SetContent(col, mapTop+row, r, nil, style)
		}
	}

	// Actors over terrain; airborne drawn last so they read on top.
	drawActor := func(a *sim.ActorSnapshot) {
		col, row := a.Cell.X-offX, a.Cell.Y-offY
		if col < 0 || col >= tickerX-2 || row < 0 || row >= mapRows {
			return
		}
		style := styleGround
		if a.Airborne {
			style = styleAir
		}
		if a.ID == state.selected {
			style = styleSelected
		}
		screen.SetContent(col, mapTop+row, actorRune(a.Name), nil, style)
	}
	for i := range snap.Actors {
		if a := &snap.Actors[i]; a.InWorld && !a.Airborne {
			drawActor(a)
		}
	}
	for i := range snap.Actors {
		if a := &snap.Actors[i]; a.InWorld && a.Airborne {
			drawActor(a)
		}
	}

	// Cursor cell, inverted.
	if col, row := state.cursor.X-offX, state.cursor.Y-offY; col >= 0 && row >= 0 &&
		col < tickerX-2 && row < mapRows {
		r, _, _, _ := screen.GetContent(col, mapTop+row)
		screen.SetContent(col, mapTop+row, r, nil, styleCursor)
	}

	// Event ticker down the right side, newest at the bottom.
	tickerRows := mapRows
	n := state.ticker.Size()
	for i := range tickerRows {
		idx := n - tickerRows + i
		if idx < 0 {
			continue
		}
		drawText(screen, tickerX, mapTop+i, width-tickerX, tcell.StyleDefault,
			state.ticker.Get(idx))
	}

	// Inspection overlay for the selected actor.
	if state.inspect {
		if a := state.findSelected(); a != nil {
			renderInspect(screen, a, width, height)
		}
	}

	// Cursor info and help line.
	info := fmt.Sprintf(" %v %s", state.cursor, state.terrain.TerrainTypeAt(state.cursor).Name)
	if a := state.actorAtCursor(); a != nil {
		info += fmt.Sprintf("  [%d %s alt %d %s]", a.ID, a.Name, a.Altitude, a.Activity)
	}
	drawText(screen, 0, height-2, width, tcell.StyleDefault, info)
	drawText(screen, 0, height-1, width, styleHelp,
		" [space]=pause [.]=step [+/-]=rate [enter]=select [m]ove [x]=stop [b]ase [p]ickup [v]=deliver [u]nload [d]ump [q]uit")
}

func (state *AppState) findSelected() *sim.ActorSnapshot {
	if state.snap == nil || state.selected == 0 {
		return nil
	}
	for i, a := range state.snap.Actors {
		if a.ID == state.selected {
			return &state.snap.Actors[i]
		}
	}
	return nil
}

func renderInspect(screen tcell.Screen, a *sim.ActorSnapshot, width, height int) {
	style := tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	lines := []string{
		fmt.Sprintf(" #%d %s (%s) ", a.ID, a.Name, a.Owner),
		fmt.Sprintf(" cell %v pos %v ", a.Cell, a.Pos),
		fmt.Sprintf(" facing %d altitude %d ", a.Facing, a.Altitude),
		fmt.Sprintf(" airborne %v cruising %v ", a.Airborne, a.Cruising),
		fmt.Sprintf(" activity %s conditions %d ", a.Activity, a.Conditions),
	}
	if a.CarryState != "" {
		lines = append(lines, fmt.Sprintf(" carry %s cargo %d %s ",
			a.CarryState, a.CargoID, a.CargoPreview))
	}
	if a.ReservedDockID != 0 {
		lines = append(lines, fmt.Sprintf(" reserved dock %d ", a.ReservedDockID))
	}
	if a.DockOccupantID != 0 {
		lines = append(lines, fmt.Sprintf(" dock occupant %d ", a.DockOccupantID))
	}

	boxW := 0
	for _, l := range lines {
		boxW = max(boxW, len(l))
	}
	x0, y0 := max(0, width-boxW-1), 1
	for i, l := range lines {
		if y0+i >= height-2 {
			break
		}
		drawText(screen, x0, y0+i, boxW, style, l)
	}
}

func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	for col < maxWidth {
		screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}
