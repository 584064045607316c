package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ararabots/vsscore/internal/actuator"
	"github.com/ararabots/vsscore/internal/config"
	"github.com/ararabots/vsscore/internal/decision"
	"github.com/ararabots/vsscore/internal/record"
	"github.com/ararabots/vsscore/internal/role"
)

// RunCommand plays one role: it reads world snapshots as JSON lines, ticks
// the controller at the configured rate and sends the actions to the robot.
type RunCommand struct {
	*BaseCommand
	config *config.Config

	role       string
	input      string
	serialPort string
	recordPath string
	rate       int
	robot      int
	body       string
	logPath    string
	logLevel   string

	// stdin is read when input is "-".
	stdin io.Reader
	// ctxFactory creates the execution context. If nil, uses
	// signal.NotifyContext. Tests set it to avoid signal handling races.
	ctxFactory func() (context.Context, context.CancelFunc)
	// actuatorFactory replaces the serial/log actuator selection in tests.
	actuatorFactory func(log *slog.Logger, robot int) (decision.Actuator, io.Closer, error)
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Run a role against a stream of world snapshots",
			"run [options]",
		),
		config:   cfg,
		logLevel: "info",
		robot:    -1,
		stdin:    os.Stdin,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.role, "role", "", "Role to play (overrides config 'role')")
	fs.StringVar(&c.input, "input", "-", "JSON lines snapshot file, or - for stdin")
	fs.StringVar(&c.serialPort, "serial", "", "Serial device of the radio (overrides config 'serial.port')")
	fs.StringVar(&c.recordPath, "record", "", "SQLite file recording every tick (overrides config 'record.path')")
	fs.IntVar(&c.rate, "rate", 0, "Ticks per second (overrides config 'tick.rate')")
	fs.IntVar(&c.robot, "robot", -1, "Robot index on the radio link (overrides config 'robot.index')")
	fs.StringVar(&c.body, "body", "", "Robot body for PID gains (overrides config 'robot.body')")
	fs.StringVar(&c.logPath, "log-file", "", "Path to log file (JSON output)")
	fs.StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the decision loop until the input ends or the process is
// interrupted.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if c.ctxFactory != nil {
		ctx, cancel = c.ctxFactory()
	} else {
		ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	defer cancel()

	cfg := c.config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	schema := config.DefaultSchema()

	lc, err := resolveLogConfig(c.logPath, c.logLevel, cfg)
	if err != nil {
		return err
	}
	if lc.logFile != nil {
		defer lc.logFile.Close()
	}
	log := lc.logger(stderr)

	settings, err := c.resolve(cfg, schema)
	if err != nil {
		return err
	}

	opts, err := config.RoleOptions(withBody(cfg, c.body), schema)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	opts.Logger = log
	controller, err := role.New(settings.role, opts)
	if err != nil {
		return err
	}

	src, closeSrc, err := c.openInput()
	if err != nil {
		return err
	}
	defer closeSrc()

	act, closeAct, err := c.openActuator(log, settings)
	if err != nil {
		return err
	}
	if closeAct != nil {
		defer closeAct.Close()
	}

	runID := uuid.NewString()
	driverOpts := []decision.Option{decision.WithLogger(log), decision.WithRunID(runID)}
	if settings.recordPath != "" {
		rec, err := record.Open(settings.recordPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		if err := rec.BeginRun(ctx, runID, settings.role, settings.robot, time.Now()); err != nil {
			return err
		}
		driverOpts = append(driverOpts, decision.WithRecorder(rec))
	}

	log.Info("[Run] starting", "role", settings.role, "robot", settings.robot, "rate", settings.rate, "run_id", runID)
	driver := decision.NewDriver(src, controller, act, driverOpts...)
	if err := driver.Run(ctx, time.Second/time.Duration(settings.rate)); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "run %s: %d ticks as %s\n", runID, driver.Ticks(), settings.role)
	return nil
}

// runSettings are the flag-over-config values the run needs.
type runSettings struct {
	role       string
	serialPort string
	baud       int
	recordPath string
	rate       int
	robot      int
}

func (c *RunCommand) resolve(cfg *config.Config, schema *config.ConfigSchema) (runSettings, error) {
	s := runSettings{
		role:       c.role,
		serialPort: c.serialPort,
		recordPath: c.recordPath,
		rate:       c.rate,
		robot:      c.robot,
	}
	if s.role == "" {
		s.role = schema.Resolve(cfg, "role")
	}
	if s.serialPort == "" {
		s.serialPort = schema.Resolve(cfg, "serial.port")
	}
	if s.recordPath == "" {
		s.recordPath = schema.Resolve(cfg, "record.path")
	}

	var err error
	if s.rate <= 0 {
		if s.rate, err = schema.Int(cfg, "", "tick.rate"); err != nil {
			return s, err
		}
	}
	if s.rate <= 0 || s.rate > 1000 {
		return s, fmt.Errorf("tick rate must be between 1 and 1000, got %d", s.rate)
	}
	if s.robot < 0 {
		if s.robot, err = schema.Int(cfg, "", "robot.index"); err != nil {
			return s, err
		}
	}
	if s.robot < 0 {
		return s, fmt.Errorf("robot index must not be negative, got %d", s.robot)
	}
	if s.baud, err = schema.Int(cfg, "", "serial.baud"); err != nil {
		return s, err
	}
	return s, nil
}

// withBody returns cfg with robot.body replaced when the flag is set.
func withBody(cfg *config.Config, body string) *config.Config {
	if body == "" {
		return cfg
	}
	out := config.NewConfig()
	for k, v := range cfg.Global {
		out.Global[k] = v
	}
	out.Sections = cfg.Sections
	out.SetGlobalOption("robot.body", body)
	return out
}

func (c *RunCommand) openInput() (decision.Source, func(), error) {
	if c.input == "" || c.input == "-" {
		return decision.NewJSONLSource(c.stdin), func() {}, nil
	}
	f, err := os.Open(c.input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return decision.NewJSONLSource(f), func() { _ = f.Close() }, nil
}

func (c *RunCommand) openActuator(log *slog.Logger, s runSettings) (decision.Actuator, io.Closer, error) {
	if c.actuatorFactory != nil {
		return c.actuatorFactory(log, s.robot)
	}
	if s.serialPort == "" {
		log.Warn("[Run] no serial port configured, actions are only logged")
		return actuator.NewLog(log, s.robot, slog.LevelDebug), nil, nil
	}
	opts := actuator.DefaultPortOptions()
	opts.BaudRate = s.baud
	sp, err := actuator.OpenSerial(s.serialPort, s.robot, opts, log)
	if err != nil {
		return nil, nil, err
	}
	return sp, closerFunc(func() error {
		err := sp.Close()
		log.Info("[Run] serial closed", "written", sp.Written(), "dropped", sp.Dropped(), "error", err)
		return err
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
