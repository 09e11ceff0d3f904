package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/picogrid/algorithm-simulations/pkg/archive"
	"github.com/picogrid/algorithm-simulations/pkg/catalog"
	"github.com/picogrid/algorithm-simulations/pkg/logger"
	"github.com/picogrid/algorithm-simulations/pkg/simulation"
	"github.com/picogrid/algorithm-simulations/pkg/terminal"
	"github.com/picogrid/algorithm-simulations/pkg/trace"
	"github.com/picogrid/algorithm-simulations/pkg/utils"
)

const (
	actionStep     = "Step"
	actionPlay     = "Play to end"
	actionRun      = "Run again"
	actionControls = "Edit controls"
	actionReset    = "Reset"
	actionLog      = "Show log"
	actionQuit     = "Quit"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulator",
	Long:  `Run a simulator interactively, or play it to the end with --auto`,
	RunE:  runSimulator,
}

func init() {
	runCmd.Flags().StringP("simulator", "s", "", "simulator name to run")
	runCmd.Flags().Bool("auto", false, "play every step without prompting")
	runCmd.Flags().Duration("delay", 0, "pause between steps in auto mode (default from config)")
	runCmd.Flags().Bool("quiet", false, "show a progress bar instead of each step in auto mode")
	runCmd.Flags().String("trace", "", "write every step to a CSV file")
	runCmd.Flags().StringArray("set", nil, "control value as id=value (repeatable)")
	runCmd.Flags().Bool("no-archive", false, "do not record this session in the run archive")
}

// session ties a controller to its terminal surface and optional trace
type session struct {
	ctl     *simulation.Controller
	surface *terminal.Surface
	tracer   *trace.Writer
	recorder *archive.Recorder
	content  *simulation.Content
}

func runSimulator(cmd *cobra.Command, _ []string) error {
	entries, err := catalog.All(settings.CatalogDir)
	if err != nil {
		return fmt.Errorf("failed to discover simulators: %w", err)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && os.Getenv("ALGOSIM_SKIP_PROMPTS") != "true"
	auto, _ := cmd.Flags().GetBool("auto")
	quiet, _ := cmd.Flags().GetBool("quiet")

	name, err := selectSimulator(cmd, entries, interactive)
	if err != nil {
		return fmt.Errorf("failed to select simulator: %w", err)
	}

	entry, ok := catalog.Find(entries, name)
	if !ok {
		return fmt.Errorf("simulator %s not found", name)
	}
	content := entry.Content.Clone()

	values, err := controlValues(cmd, content, interactive && !auto)
	if err != nil {
		return fmt.Errorf("failed to get control values: %w", err)
	}

	surface := terminal.New(os.Stdout, content,
		terminal.WithNoColor(settings.NoColor),
		terminal.WithEcho(!(auto && quiet)),
	)
	for id, value := range values {
		surface.SetControl(id, value)
	}
	content.Visualizer = terminal.Visualizer(surface)

	ctl := simulation.NewController(content, simulation.DefaultRegistry,
		simulation.WithControls(surface),
		simulation.WithDisplay(surface),
		simulation.WithLogSink(surface),
	)
	if !ctl.Enabled() {
		return fmt.Errorf("simulator %s is disabled: algorithm %s is not registered", content.Name, content.Algorithm)
	}

	tracer, err := openTrace(cmd, ctl)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			logger.Errorf("Failed to close trace: %v", err)
		}
	}()

	s := &session{ctl: ctl, surface: surface, tracer: tracer, content: content}

	if noArchive, _ := cmd.Flags().GetBool("no-archive"); settings.Archive && !noArchive {
		if store := openArchive(); store != nil {
			defer func() { _ = store.Close() }()
			s.recorder = archive.NewRecorder(store, content.Name)
		}
	}

	title := content.Title
	if title == "" {
		title = content.Name
	}
	logger.LogSection(fmt.Sprintf("Starting %s", title))
	s.run(cmd.Context())

	if auto || !interactive {
		delay := settings.AutoPlayDelay
		if cmd.Flags().Changed("delay") {
			delay, _ = cmd.Flags().GetDuration("delay")
		}
		return s.autoPlay(delay, quiet)
	}

	surface.Render()
	return s.interactive()
}

func selectSimulator(cmd *cobra.Command, entries []catalog.Entry, interactive bool) (string, error) {
	name, _ := cmd.Flags().GetString("simulator")
	if name != "" {
		return name, nil
	}

	if len(entries) == 0 {
		return "", fmt.Errorf("no simulators found")
	}

	if !interactive {
		if settings.DefaultSimulator != "" {
			return settings.DefaultSimulator, nil
		}
		return "", fmt.Errorf("no simulator given; use --simulator or set default_simulator")
	}

	options := catalog.Names(entries)
	descriptions := make(map[string]string, len(entries))
	for _, e := range entries {
		descriptions[e.Content.Name] = e.Content.Description
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select simulator:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if settings.DefaultSimulator != "" {
		if _, ok := catalog.Find(entries, settings.DefaultSimulator); ok {
			prompt.Default = settings.DefaultSimulator
		}
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}

// controlValues layers --set over ALGOSIM_CONTROL_<ID> and descriptor defaults,
// then prompts for the rest when running interactively
func controlValues(cmd *cobra.Command, content *simulation.Content, prompt bool) (map[string]string, error) {
	values := utils.Defaults(content.Controls)

	pairs, _ := cmd.Flags().GetStringArray("set")
	overrides, err := utils.ParseAssignments(pairs)
	if err != nil {
		return nil, err
	}

	for id, value := range overrides {
		ctl, ok := findControl(content.Controls, id)
		if !ok {
			return nil, fmt.Errorf("simulator %s has no control %q", content.Name, id)
		}
		if err := utils.ValidateControlValue(ctl, value); err != nil {
			return nil, err
		}
		values[id] = value
	}

	if !prompt || len(overrides) > 0 || len(content.Controls) == 0 {
		return values, nil
	}

	return utils.PromptForControls(content.Controls, values)
}

func findControl(controls []simulation.Control, id string) (simulation.Control, bool) {
	for _, c := range controls {
		if c.ID == id {
			return c, true
		}
	}
	return simulation.Control{}, false
}

func openTrace(cmd *cobra.Command, ctl *simulation.Controller) (*trace.Writer, error) {
	path, _ := cmd.Flags().GetString("trace")
	if path == "" && settings.TraceDir != "" {
		path = filepath.Join(settings.TraceDir,
			fmt.Sprintf("%s-%s.csv", ctl.Content().Name, ctl.ID().String()[:8]))
	}
	if path == "" {
		return nil, nil
	}

	tracer, err := trace.Create(path)
	if err != nil {
		return nil, err
	}
	logger.Infof("Tracing steps to %s", path)
	return tracer, nil
}

// openArchive opens the run archive. Failures are logged and the session
// continues without one.
func openArchive() *archive.Store {
	path, err := settings.ResolveArchivePath()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0755)
	}
	if err != nil {
		logger.Warnf("Run archive unavailable: %v", err)
		return nil
	}

	store, err := archive.Open(path)
	if err != nil {
		logger.Warnf("Run archive unavailable: %v", err)
		return nil
	}
	logger.Debugf("Recording runs in %s", path)
	return store
}

// run computes fresh steps and, when archiving, opens a new archived run
// with the controls as they are now
func (s *session) run(ctx context.Context) {
	s.ctl.Run()
	if s.recorder == nil {
		return
	}

	controls := make(map[string]string, len(s.content.Controls))
	for _, c := range s.content.Controls {
		if v, ok := s.surface.ControlValue(c.ID); ok {
			controls[c.ID] = v
		}
	}
	id, err := s.recorder.Begin(ctx, controls)
	if err != nil {
		logger.Warnf("Failed to archive run: %v", err)
		return
	}
	logger.Debugf("Archiving run %s", id)
}

// step advances the controller once and records the shown step
func (s *session) step() (simulation.StepResult, error) {
	result := s.ctl.Step()
	if result != simulation.StepAdvanced {
		return result, nil
	}

	status := s.ctl.Status()
	shown := status.Steps[status.CurrentStep-1]
	rec := trace.NewRecord(s.ctl.ID().String(), s.content.Name, status.CurrentStep, shown)
	if err := s.tracer.Write(rec); err != nil {
		return result, err
	}
	if s.recorder != nil && s.recorder.RunID() != "" {
		if err := s.recorder.Record(context.Background(), rec); err != nil {
			logger.Warnf("Failed to archive step %d: %v", rec.Step, err)
		}
	}
	return result, nil
}

func (s *session) autoPlay(delay time.Duration, quiet bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := s.ctl.Status()
	var bar *logger.ProgressBar
	if quiet {
		logger.Progressf("Playing %d steps...", len(status.Steps))
		bar = logger.NewProgressBar(os.Stderr, len(status.Steps), "Stepping")
	}

	for !status.Done() {
		if _, err := s.step(); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
		status = s.ctl.Status()

		if delay <= 0 || status.Done() {
			continue
		}
		select {
		case <-ctx.Done():
			logger.Warn("Received interrupt signal, stopping playback...")
			s.surface.Render()
			return nil
		case <-time.After(delay):
		}
	}

	// one more step moves the controller into its finished state
	if _, err := s.step(); err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	s.surface.Render()
	if s.tracer.Count() > 0 {
		logger.Successf("Wrote %d trace records", s.tracer.Count())
	}
	return nil
}

func (s *session) interactive() error {
	last := actionStep
	for {
		options := s.menu()
		choice, err := utils.Choose("Next:", options, last)
		if err != nil {
			return err
		}
		last = choice

		switch choice {
		case actionStep:
			if _, err := s.step(); err != nil {
				return err
			}
		case actionPlay:
			for s.surface.StepEnabled() {
				if _, err := s.step(); err != nil {
					return err
				}
			}
		case actionRun:
			s.run(context.Background())
			last = actionStep
		case actionControls:
			if err := s.editControls(); err != nil {
				return err
			}
			last = actionRun
		case actionReset:
			s.ctl.Reset()
			last = actionRun
		case actionLog:
			s.surface.RenderLog()
			continue
		case actionQuit:
			return nil
		}

		s.surface.Render()
	}
}

func (s *session) menu() []string {
	var options []string
	if s.surface.StepEnabled() {
		options = append(options, actionStep, actionPlay)
	}
	return append(options, actionRun, actionControls, actionReset, actionLog, actionQuit)
}

func (s *session) editControls() error {
	current := make(map[string]string, len(s.content.Controls))
	for _, c := range s.content.Controls {
		if v, ok := s.surface.ControlValue(c.ID); ok {
			current[c.ID] = v
		}
	}

	values, err := utils.PromptForControls(s.content.Controls, current)
	if err != nil {
		return err
	}
	for id, value := range values {
		s.surface.SetControl(id, value)
	}
	return nil
}
