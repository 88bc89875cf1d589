package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/copier/internal/config"
	"github.com/temirov/copier/internal/services/api"
	"github.com/temirov/copier/internal/types"
)

const (
	defaultServeAddress        = "127.0.0.1:8080"
	serverShutdownGrace        = 5 * time.Second
	generateCapabilityText     = "Assemble the directory tree and file contents of a root folder into markdown"
	errorRootRequired          = "root is required"
	errorNegativeDepth         = "maxDepth must not be negative"
	warningNoFilesFormat       = "no files to include under %s"
	warningEncoderMessageField = "message"
)

type generateRequest struct {
	Root               string   `json:"root"`
	Ignore             []string `json:"ignore"`
	UseDefaults        *bool    `json:"useDefaults"`
	ProjectName        string   `json:"projectName"`
	ProjectDescription string   `json:"projectDescription"`
	MaxDepth           *int     `json:"maxDepth"`
}

func (app *application) runServer(ctx context.Context, address string, notify func(string)) error {
	server := api.New(api.Options{
		Address: address,
		Capabilities: []api.Capability{
			{Name: types.CommandGenerate, Description: generateCapabilityText},
		},
		Executors:       app.apiCommandExecutors(),
		ShutdownTimeout: serverShutdownGrace,
		Logger:          app.logger,
	})
	return server.Run(ctx, notify)
}

func (app *application) apiCommandExecutors() map[string]api.Executor {
	return map[string]api.Executor{
		types.CommandGenerate: api.ExecutorFunc(app.executeGenerateCommand),
	}
}

func (app *application) executeGenerateCommand(ctx context.Context, request api.Request) (api.Response, error) {
	var body generateRequest
	if len(request.Payload) > 0 {
		if err := json.Unmarshal(request.Payload, &body); err != nil {
			return api.Response{}, api.NewStatusError(http.StatusBadRequest, fmt.Errorf("decode generate request: %w", err))
		}
	}
	rootArgument := strings.TrimSpace(body.Root)
	if rootArgument == "" {
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, errors.New(errorRootRequired))
	}
	if body.MaxDepth != nil && *body.MaxDepth < 0 {
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, errors.New(errorNegativeDepth))
	}
	absolutePath, absErr := filepath.Abs(rootArgument)
	if absErr != nil {
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, fmt.Errorf("resolve root: %w", absErr))
	}
	info, statErr := os.Stat(absolutePath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return api.Response{}, api.NewStatusError(http.StatusNotFound, fmt.Errorf(errorRootMissingFormat, rootArgument))
		}
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, fmt.Errorf("stat root: %w", statErr))
	}
	if !info.IsDir() {
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, fmt.Errorf(errorRootNotDirectoryFmt, rootArgument))
	}

	useDefaults := true
	if app.configuration.Ignore.UseDefaults != nil {
		useDefaults = *app.configuration.Ignore.UseDefaults
	}
	if body.UseDefaults != nil {
		useDefaults = *body.UseDefaults
	}
	patterns, patternErr := config.ResolveIgnorePatterns(config.IgnoreOptions{
		RootDirectory:      absolutePath,
		UseDefaults:        useDefaults,
		IgnoreFiles:        app.configuration.Ignore.Files,
		ConfiguredPatterns: app.configuration.Ignore.Patterns,
		FlagPatterns:       body.Ignore,
	})
	if patternErr != nil {
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, patternErr)
	}
	maxDepth := 0
	if app.configuration.Scan.MaxDepth != nil {
		maxDepth = *app.configuration.Scan.MaxDepth
	}
	if body.MaxDepth != nil {
		maxDepth = *body.MaxDepth
	}

	var warningBuffer bytes.Buffer
	requestApp := *app
	requestApp.logger = teeWarnings(app.logger, &warningBuffer)
	controller := requestApp.newController(selectedRoot{
		path:           absolutePath,
		name:           filepath.Base(absolutePath),
		ignorePatterns: patterns,
		maxDepth:       maxDepth,
	})
	if _, scanErr := controller.SelectRoot(ctx, filepath.Base(absolutePath), os.DirFS(absolutePath)); scanErr != nil {
		return api.Response{}, api.NewStatusError(http.StatusBadRequest, fmt.Errorf("scan root: %w", scanErr))
	}
	projectName := body.ProjectName
	if projectName == "" {
		projectName = app.configuration.Generate.ProjectName
	}
	projectDescription := body.ProjectDescription
	if projectDescription == "" {
		projectDescription = app.configuration.Generate.ProjectDescription
	}
	controller.SetProject(projectName, projectDescription)

	document, generateErr := controller.Generate(ctx)
	if generateErr != nil {
		return api.Response{}, api.NewStatusError(http.StatusInternalServerError, fmt.Errorf("generate: %w", generateErr))
	}
	warnings := extractWarnings(&warningBuffer)
	if document == "" {
		warnings = append(warnings, fmt.Sprintf(warningNoFilesFormat, rootArgument))
	}
	return api.Response{
		Output:   document,
		Format:   types.FormatMarkdown,
		Warnings: warnings,
	}, nil
}

// teeWarnings returns a logger that also writes warnings and errors to buffer, one per line.
func teeWarnings(logger *zap.Logger, buffer *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     warningEncoderMessageField,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	warningCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(buffer), zapcore.WarnLevel)
	return zap.New(zapcore.NewTee(logger.Core(), warningCore))
}

func extractWarnings(buffer *bytes.Buffer) []string {
	trimmed := strings.TrimSpace(buffer.String())
	if trimmed == "" {
		return nil
	}
	var warnings []string
	for _, line := range strings.Split(trimmed, "\n") {
		if clean := strings.TrimSpace(line); clean != "" {
			warnings = append(warnings, clean)
		}
	}
	return warnings
}
