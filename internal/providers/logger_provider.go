package providers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"fms/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeJob
	TypeLookup
)

// GetLogTypeByRequestType maps an HTTP method to the log channel used for
// access logging. Anything that is not a POST lands on the read channel.
func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	app    zerolog.Logger
	access zerolog.Logger
	files  []*os.File
}

// NewLogProvider opens one log file for application events and one for
// request traffic inside the configured directory, both at the configured
// level and file mode.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	mode := os.FileMode(conf.Logger.Mode)
	appFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		return nil, fmt.Errorf("unable to open app log: %w", err)
	}
	accessFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "access.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		appFile.Close()
		return nil, fmt.Errorf("unable to open access log: %w", err)
	}

	p := &LogProvider{
		app:    zerolog.New(appFile).Level(level).With().Timestamp().Logger(),
		access: zerolog.New(accessFile).Level(level).With().Timestamp().Logger(),
		files:  []*os.File{appFile, accessFile},
	}
	if conf.Debug {
		p.app = p.app.Output(zerolog.MultiLevelWriter(appFile, zerolog.ConsoleWriter{Out: os.Stderr}))
	}
	return p, nil
}

// Request traffic goes to the access log; everything else, including the
// scheduled jobs and role-lookup calls, is an application event.
func (p *LogProvider) pick(t TypeEnum) *zerolog.Logger {
	if t == TypeGet || t == TypePost {
		return &p.access
	}
	return &p.app
}

func (p *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	p.pick(t).Error().Msgf(format, args...)
}

func (p *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	p.pick(t).Warn().Msgf(format, args...)
}

func (p *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	p.pick(t).Info().Msgf(format, args...)
}

func (p *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	p.pick(t).Debug().Msgf(format, args...)
}

func (p *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	p.pick(t).Fatal().Msgf(format, args...)
}

func (p *LogProvider) Close() {
	for _, f := range p.files {
		_ = f.Close()
	}
}
