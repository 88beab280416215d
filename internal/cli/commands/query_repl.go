package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, store, format string) error {
	// Complete table names for the chosen store; ignore failures, the
	// REPL still works without completion.
	var completions []readline.PrefixCompleterInterface
	if tables, err := cmdCtx.Executor.Tables(cmd.Context(), store); err == nil {
		for _, t := range tables {
			completions = append(completions, readline.PcItem(t))
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "storescope> ",
		AutoComplete:    readline.NewPrefixCompleter(completions...),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "storescope query REPL (store: %s)\n", store)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("storescope> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, cmdCtx, store, line); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("       ...> ")
			continue
		}
		rl.SetPrompt("storescope> ")

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := executeAndRender(cmd, cmdCtx, store, query, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// handleDotCommand processes REPL dot-commands. Returns true when the line
// was a known dot-command.
func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, store, line string) bool {
	out := cmd.OutOrStdout()

	switch line {
	case ".help":
		_, _ = fmt.Fprintln(out, "Commands:")
		_, _ = fmt.Fprintln(out, "  .tables   List tables in the current store")
		_, _ = fmt.Fprintln(out, "  .stores   List all stores")
		_, _ = fmt.Fprintln(out, "  .quit     Exit the REPL")
		return true

	case ".tables":
		tables, err := cmdCtx.Executor.Tables(cmd.Context(), store)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		for _, t := range tables {
			_, _ = fmt.Fprintln(out, t)
		}
		return true

	case ".stores":
		stores, err := cmdCtx.Executor.Stores()
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		for _, s := range stores {
			_, _ = fmt.Fprintln(out, s)
		}
		return true

	case ".quit", ".exit":
		return true

	default:
		_, _ = fmt.Fprintf(out, "Unknown command: %s (try .help)\n", line)
		return true
	}
}
