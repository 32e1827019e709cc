package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/repositories"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/desertthunder/undertone/internal/views"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	undertone  services.Undertone
	api        *services.APIService
	httpClient *http.Client
	jar        *repositories.PersistentJar
	logger     *log.Logger
	output     io.Writer
	profile    *views.Profile
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Undertone  services.Undertone
	API        *services.APIService
	HTTPClient *http.Client
	// Jar is cleared on logout. Nil when cookies are not persisted.
	Jar    *repositories.PersistentJar
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		undertone:  opts.Undertone,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		jar:        opts.Jar,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if r.undertone == nil {
		r.undertone = r.newUndertone()
	}
	r.profile = r.newProfile(nil)
	return r
}

// newProfile builds the view controllers, optionally reporting progress on updates.
func (r *Runner) newProfile(updates chan<- views.Update) *views.Profile {
	return views.NewProfile(r.undertone, views.ProfileOpts{
		Opts:      views.Opts{Logger: r.logger, Updates: updates},
		AutoLogin: r.config.Session.AutoLoginAfterRegister,
		Mode:      r.config.Search.DefaultMode,
	})
}

// SetLogger replaces the logger used by the runner, its controllers and the
// default backend client.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if _, ok := r.undertone.(*services.UndertoneService); ok {
		r.undertone = r.newUndertone()
	}
	r.profile = r.newProfile(nil)
}

func (r *Runner) newUndertone() *services.UndertoneService {
	return services.NewUndertoneService(services.UndertoneOpts{
		BaseURL:           r.config.API.BaseURL,
		Client:            r.httpClient,
		UserAgent:         r.config.API.UserAgent,
		Logger:            r.logger,
		RequestsPerSecond: r.config.API.RequestsPerSecond,
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, libraryCommand, recsCommand, searchCommand, importCommand, apiCommand, tuiCommand, devserverCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
