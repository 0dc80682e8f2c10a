package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tinyao/ao"
	"tinyao/core"
	"tinyao/host/sim"
)

var (
	configFile = flag.String("config", "aosim.yaml", "Simulator config file")
	demoMode   = flag.Bool("demo", false, "Run the scripted demo and exit")
	debugOut   = flag.Bool("debug", false, "Enable classifier debug output")
)

type buttonConfig struct {
	Name          string `mapstructure:"name"`
	Line          uint8  `mapstructure:"line"`
	ActiveLow     bool   `mapstructure:"active_low"`
	DebounceMs    int    `mapstructure:"debounce_ms"`
	LongPressMs   int    `mapstructure:"long_press_ms"`
	DoubleClickMs int    `mapstructure:"double_click_ms"`
}

type simConfig struct {
	Buttons []buttonConfig `mapstructure:"buttons"`
	Led     struct {
		Line      uint8 `mapstructure:"line"`
		ActiveLow bool  `mapstructure:"active_low"`
	} `mapstructure:"led"`
	Lcd struct {
		Cols uint8 `mapstructure:"cols"`
		Rows uint8 `mapstructure:"rows"`
	} `mapstructure:"lcd"`
}

// simButton pairs a classifier with the timings its scripted gestures
// must respect.
type simButton struct {
	name      string
	line      uint8
	activeLow bool
	debounce  time.Duration
	longPress time.Duration
	window    time.Duration
	btn       *core.Button
}

func loadConfig(logger *zap.SugaredLogger, path string) (*simConfig, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("buttons", []map[string]interface{}{
		{"name": "BTN0", "line": 0, "active_low": true},
	})
	v.SetDefault("led.line", 25)
	v.SetDefault("lcd.cols", 16)
	v.SetDefault("lcd.rows", 2)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			logger.Infow("No config file, using defaults", "path", path)
		} else {
			return nil, nil, err
		}
	} else {
		logger.Infow("Loaded config", "path", v.ConfigFileUsed())
	}

	var cfg simConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, err
	}
	if len(cfg.Buttons) == 0 {
		return nil, nil, errors.New("no buttons configured")
	}
	return &cfg, v, nil
}

// zapDisplay renders panel traffic into the structured log. The LCD
// actor is the only caller, so the cursor needs no lock.
type zapDisplay struct {
	logger *zap.SugaredLogger
	col    uint8
	row    uint8
}

func (d *zapDisplay) Configure(cols, rows uint8) error {
	d.logger.Infow("Panel up", "cols", cols, "rows", rows)
	return nil
}

func (d *zapDisplay) Clear() error {
	d.col, d.row = 0, 0
	return nil
}

func (d *zapDisplay) SetCursor(col, row uint8) error {
	d.col, d.row = col, row
	return nil
}

func (d *zapDisplay) Print(text []byte) error {
	d.logger.Infow("Panel write", "row", d.row, "col", d.col, "text", string(text))
	return nil
}

func main() {
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()
	logger := zl.Sugar().Named("aosim")

	cfg, v, err := loadConfig(logger.Named("config"), *configFile)
	if err != nil {
		logger.Fatalw("Failed to load config", "error", err)
	}

	driver := sim.New()
	core.SetGPIODriver(driver)
	core.SetIRQController(driver)
	core.SetDisplayDriver(&zapDisplay{logger: logger.Named("lcd")})

	// the trace dump writes through the debug writer even when the
	// per-gesture debug lines are off
	core.SetDebugWriter(func(s string) { logger.Debug(s) })
	core.SetDebugEnabled(*debugOut)

	ledLogger := logger.Named("led")
	ledActiveLow := cfg.Led.ActiveLow
	driver.SetWriteHook(func(pin core.Pin, level bool) {
		ledLogger.Infow("Output write", "pin", uint32(pin), "on", level != ledActiveLow)
	})

	var led core.LED
	if err := led.Init(core.LEDConfig{
		Name:      "LED",
		Pin:       core.Pin(cfg.Led.Line),
		ActiveLow: cfg.Led.ActiveLow,
	}); err != nil {
		logger.Fatalw("LED init failed", "error", err)
	}
	var lcd core.LCD
	lcd.Init(core.LCDConfig{Cols: cfg.Lcd.Cols, Rows: cfg.Lcd.Rows})

	gestureLogger := logger.Named("gesture")
	byName := make(map[string]*simButton)
	var order []string
	for _, bc := range cfg.Buttons {
		sb := &simButton{
			name:      bc.Name,
			line:      bc.Line,
			activeLow: bc.ActiveLow,
			debounce:  time.Duration(bc.DebounceMs) * time.Millisecond,
			longPress: time.Duration(bc.LongPressMs) * time.Millisecond,
			window:    time.Duration(bc.DoubleClickMs) * time.Millisecond,
			btn:       &core.Button{},
		}
		if sb.name == "" {
			sb.name = "BTN" + fmt.Sprint(bc.Line)
		}
		if sb.debounce <= 0 {
			sb.debounce = core.DefaultDebounce
		}
		if sb.longPress <= 0 {
			sb.longPress = core.DefaultLongPress
		}
		if sb.window <= 0 {
			sb.window = core.DefaultDoubleClickWindow
		}

		name := sb.name
		err := sb.btn.Init(core.ButtonConfig{
			Name:              name,
			Pin:               core.Pin(bc.Line),
			Line:              bc.Line,
			ActiveLow:         bc.ActiveLow,
			Debounce:          sb.debounce,
			LongPress:         sb.longPress,
			DoubleClickWindow: sb.window,
			Sink:              &led,
			Notify: func(sig ao.Signal, pin core.Pin, param uint32) {
				gestureLogger.Infow("Gesture", "button", name, "signal", sig.String(), "param", param)
				lcd.Post(core.Message{Row: 1, Text: core.GestureText(name, sig, param)})
			},
		})
		if err != nil {
			logger.Fatalw("Button init failed", "button", name, "error", err)
		}
		byName[name] = sb
		order = append(order, name)
		logger.Infow("Button ready", "button", name, "line", bc.Line,
			"debounce", sb.debounce, "longPress", sb.longPress, "window", sb.window)
	}

	// classifier timings bind when the actor starts, so a live edit
	// only takes effect on restart
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Warnw("Config file changed on disk; restart to apply", "file", e.Name)
	})

	if *demoMode {
		runDemo(logger, driver, byName[order[0]])
		return
	}
	runShell(driver, byName, order)
}

// fireEdge injects one edge: the level flips and the line's pending
// flag latches, then the shared vector is serviced, which is the span
// fan-out path the firmware uses for EXTI-style controllers.
func fireEdge(d *sim.Driver, sb *simButton, pressed bool) {
	d.Edge(sb.line, pressed != sb.activeLow)
	core.ServiceIRQSpan(0, core.MaxIRQLines-1)
}

func tap(d *sim.Driver, sb *simButton) {
	fireEdge(d, sb, true)
	time.Sleep(sb.debounce + 50*time.Millisecond)
	fireEdge(d, sb, false)
}

func doubleTap(d *sim.Driver, sb *simButton) {
	tap(d, sb)
	time.Sleep(sb.window / 3)
	tap(d, sb)
}

func hold(d *sim.Driver, sb *simButton) {
	fireEdge(d, sb, true)
	time.Sleep(sb.longPress + sb.debounce + 100*time.Millisecond)
	fireEdge(d, sb, false)
}

func runShell(d *sim.Driver, byName map[string]*simButton, order []string) {
	fmt.Println("tinyao simulator - type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := parts[0]

		target := order[0]
		if len(parts) > 1 {
			target = parts[1]
		}
		sb := byName[target]

		switch cmd {
		case "quit", "exit", "q":
			return

		case "help", "?":
			printHelp()

		case "press", "release", "tap", "double", "hold":
			if sb == nil {
				fmt.Printf("Unknown button: %s\n", target)
				continue
			}
			switch cmd {
			case "press":
				fireEdge(d, sb, true)
			case "release":
				fireEdge(d, sb, false)
			case "tap":
				tap(d, sb)
			case "double":
				doubleTap(d, sb)
			case "hold":
				hold(d, sb)
			}

		case "status":
			for _, name := range order {
				b := byName[name]
				fmt.Printf("  %-8s line=%d level=%v\n", name, b.line, d.ReadPin(core.Pin(b.line)))
			}

		case "dump":
			core.DumpTraceRing()

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  press [btn]    - Press edge on a button line")
	fmt.Println("  release [btn]  - Release edge on a button line")
	fmt.Println("  tap [btn]      - Scripted press+release (single click)")
	fmt.Println("  double [btn]   - Two taps inside the double-click window")
	fmt.Println("  hold [btn]     - Press, hold past the long-press threshold, release")
	fmt.Println("  status         - Show button line levels")
	fmt.Println("  dump           - Dump the trace ring")
	fmt.Println("  quit/exit/q    - Exit the simulator")
	fmt.Println()
}

// runDemo plays the three canonical gestures back to back, waiting out
// the double-click window between them so each classifies in isolation.
func runDemo(logger *zap.SugaredLogger, d *sim.Driver, sb *simButton) {
	pause := sb.window + 200*time.Millisecond

	core.RecordTrace(core.TraceScript, sb.line, 1, 0)
	logger.Infow("Demo: single click", "button", sb.name)
	tap(d, sb)
	time.Sleep(pause)

	core.RecordTrace(core.TraceScript, sb.line, 2, 0)
	logger.Infow("Demo: double click", "button", sb.name)
	doubleTap(d, sb)
	time.Sleep(pause)

	core.RecordTrace(core.TraceScript, sb.line, 3, 0)
	logger.Infow("Demo: long press", "button", sb.name)
	hold(d, sb)
	time.Sleep(pause)

	core.DumpTraceRing()
}
