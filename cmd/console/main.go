// Command console runs the prompt builder dialogue in a terminal, in process.
//
// Plain lines are messages. ":accept", ":save" and the other action names press
// the matching button. A line ending in "\" continues on the next line.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"prompt-builder-bot/internal/bootstrap"
	"prompt-builder-bot/internal/config"
	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/internal/service"
	"prompt-builder-bot/pkg/database"

	"github.com/fatih/color"
)

const consoleUser = "console"

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Unable to connect to database: %v", err)
		os.Exit(1)
	}

	log := logger.NewIsolatedLogger("logs/console.log")
	defer log.Sync()

	dialogue, err := bootstrap.NewDialogue(gormDB, cfg, log, service.NewNoopPublisherService())
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	color.Cyan("Prompt builder (%s / %s). Type :help for commands, Ctrl+D to quit.", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	render(dialogue.HandleAction(ctx, consoleUser, dto.ActionStart))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var pending []string
	prompt()
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			continue
		}
		input := strings.Join(append(pending, line), "\n")
		pending = nil

		if strings.TrimSpace(input) == "" {
			prompt()
			continue
		}

		var reply *dto.Reply
		if name, ok := strings.CutPrefix(strings.TrimSpace(input), ":"); ok {
			reply = dialogue.HandleAction(ctx, consoleUser, dto.Action(name))
		} else {
			reply = dialogue.HandleMessage(ctx, consoleUser, input)
		}
		render(reply)
		prompt()
	}
}

func prompt() {
	color.New(color.FgHiBlack).Print("> ")
}

func render(reply *dto.Reply) {
	if reply == nil {
		return
	}

	switch reply.Kind {
	case dto.ReplyOK:
		fmt.Println(reply.Text)
	case dto.ReplyGenerationFailed, dto.ReplyInternalError:
		color.Red("%s", reply.Text)
	default:
		color.Yellow("%s", reply.Text)
	}

	if reply.File != nil {
		color.Green("Saved %s (%s)", reply.File.Filename, reply.File.Caption)
	}
	if len(reply.Actions) > 0 {
		names := make([]string, len(reply.Actions))
		for i, a := range reply.Actions {
			names[i] = ":" + string(a)
		}
		color.Cyan("[%s] %s", reply.State, strings.Join(names, "  "))
	}
}
