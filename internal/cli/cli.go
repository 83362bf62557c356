// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fsmcp/internal/commands"
	"github.com/temirov/fsmcp/internal/config"
	"github.com/temirov/fsmcp/internal/output"
	"github.com/temirov/fsmcp/internal/security"
	"github.com/temirov/fsmcp/internal/services/clipboard"
	"github.com/temirov/fsmcp/internal/services/mcp"
	"github.com/temirov/fsmcp/internal/services/stdio"
	"github.com/temirov/fsmcp/internal/tokenizer"
	"github.com/temirov/fsmcp/internal/tools"
	"github.com/temirov/fsmcp/internal/types"
	"github.com/temirov/fsmcp/internal/utils"
)

const (
	exclusionFlagName  = "e"
	recursiveFlagName  = "recursive"
	formatFlagName     = "format"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	noColorFlagName    = "no-color"
	copyFlagName       = "copy"
	transportFlagName  = "transport"
	addressFlagName    = "address"
	allowFlagName      = "allow"
	globalFlagName     = "global"
	forceFlagName      = "force"
	versionFlagName    = "version"
	configFlagName     = "config"
	logLevelFlagName   = "log-level"
	noColorEnvironment = "NO_COLOR"

	versionTemplate      = "fsmcp version: %s\n"
	defaultPath          = "."
	rootUse              = "fsmcp"
	rootShortDescription = "fsmcp folder structure tool server"
	rootLongDescription  = `fsmcp renders directory trees that honor .gitignore rules and serves them
to assistants as the get_folder_structure tool.
Use tree to render a directory locally, serve to expose the tool over stdio or HTTP,
and init to write a default configuration file.`

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "display directory tree (" + treeAlias + ")"
	treeLongDescription  = `List the directories and files below a path as a YAML-style tree.
Entries matched by .gitignore files, built-in build and cache directories, and hidden names are omitted.
Use --format to select yaml, tree, or json output.`
	treeUsageExample = `  # Render the current directory
  fsmcp tree

  # List only the first level of ./internal
  fsmcp tree --recursive false ./internal

  # Exclude generated files and copy the result
  fsmcp tree -e '*.pb.go' --copy .`

	serveUse              = "serve"
	serveShortDescription = "serve the folder structure tool"
	serveLongDescription  = `Expose get_folder_structure to MCP clients.
The stdio transport speaks MCP on standard input and output; the http transport serves
GET /capabilities and POST /tools/get_folder_structure.
Only directories below an --allow entry can be inspected; the working directory is allowed when none is given.`
	serveUsageExample = `  # Serve over stdio for a desktop assistant
  fsmcp serve --allow ~/projects

  # Serve over HTTP
  fsmcp serve --transport http --address 127.0.0.1:8765`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to ./fsmcp.yaml, or to the XDG configuration
directory with --global. Existing files are kept unless --force is given.`

	versionFlagDescription   = "display application version"
	configFlagDescription    = "path to a configuration file"
	logLevelFlagDescription  = "log level (debug, info, warn, error)"
	exclusionFlagDescription = "exclude path pattern (gitignore syntax)"
	recursiveFlagDescription = "descend into subdirectories"
	formatFlagDescription    = "output format (yaml, tree, json)"
	tokensFlagDescription    = "report the token count of the rendered tree"
	modelFlagDescription     = "tokenizer model to use for token counting"
	noColorFlagDescription   = "disable colored output"
	copyFlagDescription      = "copy the rendered tree to the clipboard"
	transportFlagDescription = "transport to serve (stdio, http)"
	addressFlagDescription   = "listen address for the http transport"
	allowFlagDescription     = "directory the tool may inspect (repeatable)"
	globalFlagDescription    = "write the global configuration instead of the local one"
	forceFlagDescription     = "overwrite an existing configuration file"

	invalidFormatMessage        = "invalid format value '%s'"
	invalidTransportMessage     = "invalid transport value '%s'"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	tokenSummaryFormat          = "tokens: %d (%s)\n"
	listeningAnnouncementFormat = "MCP server listening on %s\n"
	initializedMessageFormat    = "configuration written to %s\n"

	logCopyFailed      = "unable to copy tree to clipboard"
	logCopied          = "copied tree to clipboard"
	logServeStarting   = "starting tool server"
	logAllowedDefaults = "no allowed directories configured, allowing the working directory"
)

// applicationState holds what the root command resolves before a subcommand runs.
type applicationState struct {
	configuration config.ApplicationConfiguration
	logger        *zap.Logger
	copier        clipboard.Copier
}

// Execute runs the fsmcp application.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCommand := createRootCommand(clipboard.NewService())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(copier clipboard.Copier) *cobra.Command {
	var showVersion bool
	var configurationPath string
	var logLevel string
	state := &applicationState{logger: zap.NewNop(), copier: copier}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, writeErr := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return writeErr
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if command.Name() != initUse {
				loaded, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: configurationPath})
				if loadErr != nil {
					return loadErr
				}
				state.configuration = loaded
			}
			level := state.configuration.LogLevel
			if command.Flags().Changed(logLevelFlagName) {
				level = logLevel
			}
			logger, loggerErr := utils.NewApplicationLogger(level)
			if loggerErr != nil {
				return loggerErr
			}
			state.logger = logger
			return nil
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			_ = state.logger.Sync()
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().StringVar(&logLevel, logLevelFlagName, utils.DefaultLogLevel, logLevelFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(state),
		createServeCommand(state),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// treeOptions stores the tree command flags.
type treeOptions struct {
	exclusionPatterns []string
	recursive         bool
	format            string
	tokensEnabled     bool
	tokenModel        string
	disableColor      bool
	copyEnabled       bool
}

// resolve applies configuration defaults to every flag the user did not set.
func (options treeOptions) resolve(command *cobra.Command, treeConfiguration config.TreeConfiguration) treeOptions {
	flags := command.Flags()
	resolved := options
	if !flags.Changed(recursiveFlagName) && treeConfiguration.Recursive != nil {
		resolved.recursive = *treeConfiguration.Recursive
	}
	if !flags.Changed(formatFlagName) && treeConfiguration.Format != "" {
		resolved.format = treeConfiguration.Format
	}
	if !flags.Changed(tokensFlagName) && treeConfiguration.Tokens.Enabled != nil {
		resolved.tokensEnabled = *treeConfiguration.Tokens.Enabled
	}
	if !flags.Changed(modelFlagName) && treeConfiguration.Tokens.Model != "" {
		resolved.tokenModel = treeConfiguration.Tokens.Model
	}
	if !flags.Changed(noColorFlagName) && treeConfiguration.Color != nil {
		resolved.disableColor = !*treeConfiguration.Color
	}
	if !flags.Changed(copyFlagName) && treeConfiguration.Clipboard != nil {
		resolved.copyEnabled = *treeConfiguration.Clipboard
	}
	resolved.exclusionPatterns = utils.DeduplicatePatterns(append(append([]string{}, treeConfiguration.Paths.Exclude...), options.exclusionPatterns...))
	resolved.format = strings.ToLower(strings.TrimSpace(resolved.format))
	return resolved
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(state *applicationState) *cobra.Command {
	var options treeOptions

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			targetPath := defaultPath
			if len(arguments) > 0 {
				targetPath = arguments[0]
			}
			resolved := options.resolve(command, state.configuration.Tree)
			if !types.IsSupportedFormat(resolved.format) {
				return fmt.Errorf(invalidFormatMessage, resolved.format)
			}
			return runTree(command, state, targetPath, resolved)
		},
	}

	flags := treeCommand.Flags()
	flags.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flags, &options.recursive, recursiveFlagName, true, recursiveFlagDescription)
	flags.StringVar(&options.format, formatFlagName, types.FormatYAML, formatFlagDescription)
	registerBooleanFlag(flags, &options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	flags.StringVar(&options.tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerBooleanFlag(flags, &options.disableColor, noColorFlagName, false, noColorFlagDescription)
	registerBooleanFlag(flags, &options.copyEnabled, copyFlagName, false, copyFlagDescription)
	return treeCommand
}

// runTree renders one tree to the command output and handles the optional copy and token report.
func runTree(command *cobra.Command, state *applicationState, targetPath string, options treeOptions) error {
	palette := output.PlainPalette()
	if useColor(command.OutOrStdout(), options) {
		palette = output.ColorPalette()
	}
	renderer := &commands.TreeRenderer{
		ExtraPatterns: options.exclusionPatterns,
		Format:        options.format,
		Palette:       palette,
		Logger:        state.logger,
	}
	rendered, renderErr := renderer.RenderTree(command.Context(), targetPath, options.recursive)
	if renderErr != nil {
		return renderErr
	}
	if _, writeErr := io.WriteString(command.OutOrStdout(), rendered); writeErr != nil {
		return writeErr
	}

	if options.tokensEnabled {
		counter, model, counterErr := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenModel})
		if counterErr != nil {
			return counterErr
		}
		tokenCount, countErr := counter.CountString(rendered)
		if countErr != nil {
			return countErr
		}
		fmt.Fprintf(command.ErrOrStderr(), tokenSummaryFormat, tokenCount, model)
	}

	if options.copyEnabled && state.copier != nil {
		if copyErr := state.copier.Copy(rendered); copyErr != nil {
			state.logger.Warn(logCopyFailed, zap.Error(copyErr))
		} else {
			state.logger.Debug(logCopied, zap.Int("bytes", len(rendered)))
		}
	}
	return nil
}

// useColor reports whether directory names should be highlighted.
// Copied output stays plain so the clipboard never receives escape sequences.
func useColor(writer io.Writer, options treeOptions) bool {
	if options.disableColor || options.copyEnabled || options.format == types.FormatJSON {
		return false
	}
	if os.Getenv(noColorEnvironment) != "" {
		return false
	}
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	descriptor := file.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}

// serveOptions stores the serve command flags.
type serveOptions struct {
	transport      string
	address        string
	allowedEntries []string
}

// createServeCommand returns the serve subcommand.
func createServeCommand(state *applicationState) *cobra.Command {
	var options serveOptions

	serveCommand := &cobra.Command{
		Use:     serveUse,
		Short:   serveShortDescription,
		Long:    serveLongDescription,
		Example: serveUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			serveConfiguration := state.configuration.Serve
			flags := command.Flags()
			transport := options.transport
			if !flags.Changed(transportFlagName) && serveConfiguration.Transport != "" {
				transport = serveConfiguration.Transport
			}
			address := options.address
			if !flags.Changed(addressFlagName) && serveConfiguration.Address != "" {
				address = serveConfiguration.Address
			}
			allowedEntries := options.allowedEntries
			if !flags.Changed(allowFlagName) {
				allowedEntries = serveConfiguration.Allow
			}
			return runServe(command, state, strings.ToLower(strings.TrimSpace(transport)), address, allowedEntries)
		},
	}

	flags := serveCommand.Flags()
	flags.StringVar(&options.transport, transportFlagName, types.TransportStdio, transportFlagDescription)
	flags.StringVar(&options.address, addressFlagName, config.DefaultServeAddress, addressFlagDescription)
	flags.StringArrayVar(&options.allowedEntries, allowFlagName, nil, allowFlagDescription)
	return serveCommand
}

// runServe builds the folder structure tool and serves it on the selected transport.
func runServe(command *cobra.Command, state *applicationState, transport string, address string, allowedEntries []string) error {
	allowedDirectories := utils.DeduplicatePatterns(allowedEntries)
	if len(allowedDirectories) == 0 {
		workingDirectory, workingDirectoryErr := os.Getwd()
		if workingDirectoryErr != nil {
			return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryErr)
		}
		state.logger.Info(logAllowedDefaults, zap.String("directory", workingDirectory))
		allowedDirectories = []string{workingDirectory}
	}
	authorizer, authorizerErr := security.NewAuthorizer(allowedDirectories)
	if authorizerErr != nil {
		return authorizerErr
	}

	treeConfiguration := state.configuration.Tree
	folderTool := tools.NewFolderStructureTool(tools.FolderStructureConfig{
		Authorizer:    authorizer,
		ExtraPatterns: utils.DeduplicatePatterns(treeConfiguration.Paths.Exclude),
		TokenModel:    treeConfiguration.Tokens.Model,
		Logger:        state.logger,
	})
	state.logger.Info(logServeStarting,
		zap.String("transport", transport),
		zap.Strings("allowed", authorizer.AllowedDirectories()),
	)

	switch transport {
	case types.TransportStdio:
		server := stdio.NewServer(stdio.Config{
			Name:    utils.ApplicationName,
			Version: utils.GetApplicationVersion(),
			Tools:   []stdio.Tool{folderTool},
			Logger:  state.logger,
		})
		return server.Serve(command.Context(), command.InOrStdin(), command.OutOrStdout())
	case types.TransportHTTP:
		return startHTTPServer(command.Context(), httpServerConfig(address, folderTool, state.logger), command.ErrOrStderr())
	default:
		return fmt.Errorf(invalidTransportMessage, transport)
	}
}

// startHTTPServer runs the HTTP tool server and announces its bound address on announcements.
func startHTTPServer(ctx context.Context, serverConfig mcp.Config, announcements io.Writer) error {
	server := mcp.NewServer(serverConfig)
	return server.Run(ctx, func(address string) {
		fmt.Fprintf(announcements, listeningAnnouncementFormat, address)
	})
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var globalTarget bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initErr := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initErr != nil {
				return initErr
			}
			_, writeErr := fmt.Fprintf(command.OutOrStdout(), initializedMessageFormat, writtenPath)
			return writeErr
		},
	}
	registerBooleanFlag(initCommand.Flags(), &globalTarget, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
