// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/copier/internal/config"
	"github.com/temirov/copier/internal/markdown"
	"github.com/temirov/copier/internal/services/clipboard"
	"github.com/temirov/copier/internal/session"
	"github.com/temirov/copier/internal/tui"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
	"github.com/temirov/copier/internal/walker"
)

const (
	ignoreFlagName             = "ignore"
	ignoreFlagShorthand        = "e"
	defaultsFlagName           = "defaults"
	ignoreFileFlagName         = "ignore-file"
	depthFlagName              = "depth"
	nameFlagName               = "name"
	descriptionFlagName        = "description"
	addFlagName                = "add"
	outputFlagName             = "output"
	outputFlagShorthand        = "o"
	downloadFlagName           = "download"
	copyFlagName               = "copy"
	tokensFlagName             = "tokens"
	modelFlagName              = "model"
	formatFlagName             = "format"
	addressFlagName            = "address"
	forceFlagName              = "force"
	globalFlagName             = "global"
	configFlagName             = "config"
	versionFlagName            = "version"
	versionTemplate            = "copier version: %s\n"
	defaultPath                = "."
	standardOutputPath         = "-"
	outputFilePermissions      = 0o644
	rootUse                    = "copier"
	rootShortDescription       = "assemble a folder into one markdown document"
	rootLongDescription        = `copier walks a folder, filters paths with ignore patterns and assembles a single
markdown document holding the directory tree and the contents of every file.
Patterns: *term* (contains), *suffix, prefix*, dir/ (contains dir/), or an exact path.`
	generateUse                = "generate [root]"
	generateAlias              = "g"
	generateShortDescription   = "write the markdown document (" + generateAlias + ")"
	generateUsageExample       = `  # Print the document for the current folder
  copier generate

  # Ignore logs, name the project and copy the result to the clipboard
  copier g ./app -e "*.log" --name Demo --copy`
	treeUse                    = "tree [root]"
	treeAlias                  = "t"
	treeShortDescription       = "print the directory tree (" + treeAlias + ")"
	scanUse                    = "scan [root]"
	scanAlias                  = "s"
	scanShortDescription       = "list the files that would be included (" + scanAlias + ")"
	serveUse                   = "serve"
	serveShortDescription      = "serve the generate command over HTTP"
	uiUse                      = "ui [root]"
	uiShortDescription         = "edit ignore patterns and generate interactively"
	configUse                  = "config"
	configShortDescription     = "manage configuration files"
	configInitUse              = "init"
	configInitShortDescription = "write a configuration template"
	ignoreFlagDescription      = "ignore pattern (repeatable)"
	defaultsFlagDescription    = "start from the built-in ignore patterns"
	ignoreFileFlagDescription  = "read additional ignore patterns from a file (repeatable)"
	depthFlagDescription       = "maximum directory depth below the root"
	nameFlagDescription        = "project name shown in the document"
	descriptionFlagDescription = "project description shown in the document"
	addFlagDescription         = "additional file or folder to include (repeatable)"
	outputFlagDescription      = "write the document to a file, - for stdout"
	downloadFlagDescription    = "save the document as <root>-structure.md in the working directory"
	copyFlagDescription        = "copy the document to the clipboard"
	tokensFlagDescription      = "report the token count of the document"
	modelFlagDescription       = "tokenizer model used for token counting"
	formatFlagDescription      = "listing format: table or json"
	addressFlagDescription     = "listen address"
	forceFlagDescription       = "overwrite an existing configuration file"
	globalFlagDescription      = "write the global configuration instead of the local one"
	configFlagDescription      = "configuration file (default .copier.yaml)"
	versionFlagDescription     = "display application version"
	errorRootMissingFormat     = "root %q does not exist"
	errorRootNotDirectoryFmt   = "root %q is not a directory"
	errorNoFilesFormat         = "no files to include under %s"
	messageSavedFormat         = "Saved %s\n"
	messageCopied              = "Copied markdown to clipboard"
	messageConfigWrittenFormat = "Configuration written to %s\n"
	messageServingFormat       = "Serving on http://%s\n"
	messageTokensFormat        = "Tokens: %d (%s)\n"
)

// dependencies carries the process collaborators so commands can be exercised in tests.
type dependencies struct {
	logger         *zap.Logger
	stdout         io.Writer
	stderr         io.Writer
	copier         clipboard.Copier
	runInteractive func(tui.Options) error
}

// Execute runs the copier application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(dependencies{
		logger:         logger,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		copier:         clipboard.NewService(),
		runInteractive: tui.Run,
	})
	rootCommand.SetArgs(joinToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// application holds the state shared by all subcommands of one invocation.
type application struct {
	dependencies
	configPath    string
	configuration config.ApplicationConfiguration
}

// createRootCommand builds the root Cobra command.
func createRootCommand(deps dependencies) *cobra.Command {
	if deps.logger == nil {
		deps.logger = zap.NewNop()
	}
	app := &application{dependencies: deps}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(app.stdout, versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			loaded, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configPath})
			if loadErr != nil {
				return loadErr
			}
			app.configuration = loaded
			return nil
		},
	}
	rootCommand.SetOut(deps.stdout)
	rootCommand.SetErr(deps.stderr)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		app.createGenerateCommand(),
		app.createTreeCommand(),
		app.createScanCommand(),
		app.createServeCommand(),
		app.createUICommand(),
		app.createConfigCommand(),
	)
	return rootCommand
}

// selectionOptions stores the flags shared by every command that walks a root.
type selectionOptions struct {
	ignorePatterns []string
	useDefaults    bool
	ignoreFiles    []string
	maxDepth       int
}

func addSelectionFlags(command *cobra.Command, options *selectionOptions) {
	command.Flags().StringArrayVarP(&options.ignorePatterns, ignoreFlagName, ignoreFlagShorthand, nil, ignoreFlagDescription)
	bindToggleFlag(command.Flags(), &options.useDefaults, defaultsFlagName, true, defaultsFlagDescription)
	command.Flags().StringArrayVar(&options.ignoreFiles, ignoreFileFlagName, nil, ignoreFileFlagDescription)
	command.Flags().IntVar(&options.maxDepth, depthFlagName, walker.DefaultMaxDepth, depthFlagDescription)
}

// selectedRoot is a validated root directory with the settings resolved for it.
type selectedRoot struct {
	path           string
	name           string
	ignorePatterns []string
	maxDepth       int
}

// resolveRoot validates the root argument and merges flags over configuration.
func (app *application) resolveRoot(command *cobra.Command, arguments []string, options selectionOptions) (selectedRoot, error) {
	rootArgument := defaultPath
	if len(arguments) > 0 {
		rootArgument = arguments[0]
	}
	absolutePath, absErr := filepath.Abs(rootArgument)
	if absErr != nil {
		return selectedRoot{}, fmt.Errorf("resolve root %q: %w", rootArgument, absErr)
	}
	info, statErr := os.Stat(absolutePath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return selectedRoot{}, fmt.Errorf(errorRootMissingFormat, rootArgument)
		}
		return selectedRoot{}, fmt.Errorf("stat root %q: %w", rootArgument, statErr)
	}
	if !info.IsDir() {
		return selectedRoot{}, fmt.Errorf(errorRootNotDirectoryFmt, rootArgument)
	}

	useDefaults := options.useDefaults
	if !command.Flags().Changed(defaultsFlagName) && app.configuration.Ignore.UseDefaults != nil {
		useDefaults = *app.configuration.Ignore.UseDefaults
	}
	maxDepth := options.maxDepth
	if !command.Flags().Changed(depthFlagName) && app.configuration.Scan.MaxDepth != nil {
		maxDepth = *app.configuration.Scan.MaxDepth
	}
	patterns, patternErr := config.ResolveIgnorePatterns(config.IgnoreOptions{
		RootDirectory:      absolutePath,
		UseDefaults:        useDefaults,
		IgnoreFiles:        append(append([]string{}, app.configuration.Ignore.Files...), options.ignoreFiles...),
		ConfiguredPatterns: app.configuration.Ignore.Patterns,
		FlagPatterns:       options.ignorePatterns,
	})
	if patternErr != nil {
		return selectedRoot{}, patternErr
	}
	return selectedRoot{
		path:           absolutePath,
		name:           filepath.Base(absolutePath),
		ignorePatterns: patterns,
		maxDepth:       maxDepth,
	}, nil
}

// newController returns a session controller configured from the application configuration.
func (app *application) newController(root selectedRoot) *session.Controller {
	return session.New(session.Options{
		IgnorePatterns: root.ignorePatterns,
		MaxDepth:       root.maxDepth,
		Assembler:      app.assembler(),
		Logger:         app.logger,
	})
}

func (app *application) assembler() markdown.Assembler {
	assembler := markdown.Assembler{Logger: app.logger}
	if app.configuration.Generate.MaxFileSize != nil {
		assembler.MaxFileSize = *app.configuration.Generate.MaxFileSize
	}
	if app.configuration.Generate.ReadTimeout != nil {
		assembler.ReadTimeout = *app.configuration.Generate.ReadTimeout
	}
	return assembler
}

// generateOptions stores the flags of the generate command.
type generateOptions struct {
	selection   selectionOptions
	projectName string
	description string
	addedPaths  []string
	outputPath  string
	download    bool
	copy        bool
	tokens      bool
	model       string
}

// createGenerateCommand returns the generate subcommand.
func (app *application) createGenerateCommand() *cobra.Command {
	var options generateOptions
	generateCommand := &cobra.Command{
		Use:     generateUse,
		Aliases: []string{generateAlias},
		Short:   generateShortDescription,
		Example: generateUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runGenerate(command, arguments, options)
		},
	}
	addSelectionFlags(generateCommand, &options.selection)
	generateCommand.Flags().StringVar(&options.projectName, nameFlagName, "", nameFlagDescription)
	generateCommand.Flags().StringVar(&options.description, descriptionFlagName, "", descriptionFlagDescription)
	generateCommand.Flags().StringArrayVar(&options.addedPaths, addFlagName, nil, addFlagDescription)
	generateCommand.Flags().StringVarP(&options.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	bindToggleFlag(generateCommand.Flags(), &options.download, downloadFlagName, false, downloadFlagDescription)
	bindToggleFlag(generateCommand.Flags(), &options.copy, copyFlagName, false, copyFlagDescription)
	bindToggleFlag(generateCommand.Flags(), &options.tokens, tokensFlagName, false, tokensFlagDescription)
	generateCommand.Flags().StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	return generateCommand
}

func (app *application) runGenerate(command *cobra.Command, arguments []string, options generateOptions) error {
	root, rootErr := app.resolveRoot(command, arguments, options.selection)
	if rootErr != nil {
		return rootErr
	}
	controller := app.newController(root)
	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, scanErr := controller.SelectRoot(ctx, root.name, os.DirFS(root.path)); scanErr != nil {
		return scanErr
	}
	if len(options.addedPaths) > 0 {
		picked, pickErr := walker.CollectPaths(options.addedPaths, app.logger)
		if pickErr != nil {
			return pickErr
		}
		controller.AddFiles(picked...)
	}

	generateSettings := app.configuration.Generate
	projectName := generateSettings.ProjectName
	if command.Flags().Changed(nameFlagName) {
		projectName = options.projectName
	}
	description := generateSettings.ProjectDescription
	if command.Flags().Changed(descriptionFlagName) {
		description = options.description
	}
	controller.SetProject(projectName, description)

	document, generateErr := controller.Generate(ctx)
	if generateErr != nil {
		return generateErr
	}
	if document == "" {
		return fmt.Errorf(errorNoFilesFormat, root.path)
	}

	copyEnabled := options.copy
	if !command.Flags().Changed(copyFlagName) && generateSettings.Clipboard != nil {
		copyEnabled = *generateSettings.Clipboard
	}
	tokensEnabled := options.tokens
	if !command.Flags().Changed(tokensFlagName) && generateSettings.Tokens.Enabled != nil {
		tokensEnabled = *generateSettings.Tokens.Enabled
	}
	model := options.model
	if model == "" {
		model = generateSettings.Tokens.Model
	}

	return app.exportDocument(controller, exportOptions{
		outputPath: options.outputPath,
		download:   options.download,
		copy:       copyEnabled,
		tokens:     tokensEnabled,
		model:      model,
	})
}

type exportOptions struct {
	outputPath string
	download   bool
	copy       bool
	tokens     bool
	model      string
}

// exportDocument delivers the generated document. Without an explicit destination it goes to stdout.
func (app *application) exportDocument(controller *session.Controller, options exportOptions) error {
	document := controller.Markdown()
	writeToStdout := options.outputPath == standardOutputPath || (options.outputPath == "" && !options.download && !options.copy)
	if writeToStdout {
		if _, err := io.WriteString(app.stdout, document); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
	} else if options.outputPath != "" {
		if err := os.WriteFile(options.outputPath, []byte(document), outputFilePermissions); err != nil {
			return fmt.Errorf("write document to %s: %w", options.outputPath, err)
		}
		fmt.Fprintf(app.stderr, messageSavedFormat, options.outputPath)
	}
	if options.download {
		workingDirectory, wdErr := os.Getwd()
		if wdErr != nil {
			return fmt.Errorf("determine working directory: %w", wdErr)
		}
		savedPath, saveErr := controller.SaveMarkdown(workingDirectory)
		if saveErr != nil {
			return saveErr
		}
		fmt.Fprintf(app.stderr, messageSavedFormat, savedPath)
	}
	if options.copy {
		if copyErr := controller.CopyMarkdown(app.copier); copyErr != nil {
			return fmt.Errorf("copy document: %w", copyErr)
		}
		app.logger.Info(messageCopied)
	}
	if options.tokens {
		return app.reportTokens(document, options.model)
	}
	return nil
}

// createTreeCommand returns the tree subcommand.
func (app *application) createTreeCommand() *cobra.Command {
	var options selectionOptions
	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			root, items, err := app.scanRoot(command, arguments, options)
			if err != nil {
				return err
			}
			return writeTree(app.stdout, items, root.ignorePatterns)
		},
	}
	addSelectionFlags(treeCommand, &options)
	return treeCommand
}

// scanOptions stores the flags of the scan command.
type scanOptions struct {
	selection selectionOptions
	tokens    bool
	model     string
	format    string
}

// createScanCommand returns the scan subcommand.
func (app *application) createScanCommand() *cobra.Command {
	var options scanOptions
	scanCommand := &cobra.Command{
		Use:     scanUse,
		Aliases: []string{scanAlias},
		Short:   scanShortDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			_, items, err := app.scanRoot(command, arguments, options.selection)
			if err != nil {
				return err
			}
			listing := scanListing{items: items, maxFileSize: app.assembler().MaxFileSize}
			if options.tokens {
				counter, modelName, counterErr := newTokenCounter(options.model, app.configuration.Generate.Tokens.Model)
				if counterErr != nil {
					return counterErr
				}
				listing.counter = counter
				listing.model = modelName
			}
			return writeScanListing(app.stdout, options.format, listing, app.logger)
		},
	}
	addSelectionFlags(scanCommand, &options.selection)
	bindToggleFlag(scanCommand.Flags(), &options.tokens, tokensFlagName, false, tokensFlagDescription)
	scanCommand.Flags().StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	scanCommand.Flags().StringVar(&options.format, formatFlagName, scanFormatTable, formatFlagDescription)
	return scanCommand
}

func (app *application) scanRoot(command *cobra.Command, arguments []string, options selectionOptions) (selectedRoot, []types.FileItem, error) {
	root, rootErr := app.resolveRoot(command, arguments, options)
	if rootErr != nil {
		return selectedRoot{}, nil, rootErr
	}
	controller := app.newController(root)
	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, scanErr := controller.SelectRoot(ctx, root.name, os.DirFS(root.path)); scanErr != nil {
		return selectedRoot{}, nil, scanErr
	}
	return root, controller.Snapshot().Files, nil
}

// createServeCommand returns the serve subcommand.
func (app *application) createServeCommand() *cobra.Command {
	var address string
	serveCommand := &cobra.Command{
		Use:   serveUse,
		Short: serveShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			listenAddress := address
			if !command.Flags().Changed(addressFlagName) && app.configuration.Serve.Address != "" {
				listenAddress = app.configuration.Serve.Address
			}
			ctx := command.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.runServer(ctx, listenAddress, func(boundAddress string) {
				fmt.Fprintf(app.stderr, messageServingFormat, boundAddress)
			})
		},
	}
	serveCommand.Flags().StringVar(&address, addressFlagName, defaultServeAddress, addressFlagDescription)
	return serveCommand
}

// createUICommand returns the interactive subcommand.
func (app *application) createUICommand() *cobra.Command {
	var options selectionOptions
	uiCommand := &cobra.Command{
		Use:   uiUse,
		Short: uiShortDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			root, rootErr := app.resolveRoot(command, arguments, options)
			if rootErr != nil {
				return rootErr
			}
			workingDirectory, wdErr := os.Getwd()
			if wdErr != nil {
				return fmt.Errorf("determine working directory: %w", wdErr)
			}
			controller := app.newController(root)
			controller.SetProject(app.configuration.Generate.ProjectName, app.configuration.Generate.ProjectDescription)
			return app.runInteractive(tui.Options{
				Controller:    controller,
				Copier:        app.copier,
				SaveDirectory: workingDirectory,
				RootName:      root.name,
				RootFS:        os.DirFS(root.path),
			})
		},
	}
	addSelectionFlags(uiCommand, &options)
	return uiCommand
}

// createConfigCommand returns the config command group.
func (app *application) createConfigCommand() *cobra.Command {
	var force bool
	var global bool
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		// Skips configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(app.stdout, messageConfigWrittenFormat, path)
			return err
		},
	}
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	configCommand.AddCommand(initCommand)
	return configCommand
}
