package controller

import (
	"context"
	"errors"
	"fmt"

	"prompt-builder-bot/internal/constant"
	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/pkg/serverutils"
	"prompt-builder-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReplyNotifier pushes a reply to the user's open sockets
type ReplyNotifier interface {
	Send(ctx context.Context, userID string, reply *dto.Reply)
}

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	SendAction(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	GetArchive(ctx *fiber.Ctx) error
}

type chatController struct {
	dialogueService service.IDialogueService
	notifier        ReplyNotifier
	jwtSecret       string
	socket          fiber.Handler
}

// NewChatController builds the chat routes. notifier and socket may be nil.
func NewChatController(dialogueService service.IDialogueService, notifier ReplyNotifier, socket fiber.Handler, jwtSecret string) IChatController {
	return &chatController{
		dialogueService: dialogueService,
		notifier:        notifier,
		jwtSecret:       jwtSecret,
		socket:          socket,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("message", c.SendMessage)
	h.Post("action", c.SendAction)
	h.Get("session", c.GetSession)
	h.Get("export", c.Export)
	h.Get("archive", c.GetArchive)
	if c.socket != nil {
		h.Get("ws", c.socket)
	}
}

func (c *chatController) notify(ctx *fiber.Ctx, userID string, reply *dto.Reply) {
	if c.notifier != nil {
		c.notifier.Send(ctx.UserContext(), userID, reply)
	}
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reply := c.dialogueService.HandleMessage(ctx.UserContext(), userID, req.Text)
	c.notify(ctx, userID, reply)

	return ctx.JSON(serverutils.SuccessResponse("Message handled", reply))
}

func (c *chatController) SendAction(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	var req dto.SendActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reply := c.dialogueService.HandleAction(ctx.UserContext(), userID, req.Action)
	c.notify(ctx, userID, reply)

	return ctx.JSON(serverutils.SuccessResponse("Action handled", reply))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	res := c.dialogueService.Snapshot(ctx.UserContext(), serverutils.UserID(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

// Export downloads the current prompt as a text file
func (c *chatController) Export(ctx *fiber.Ctx) error {
	reply := c.dialogueService.HandleAction(ctx.UserContext(), serverutils.UserID(ctx), dto.ActionExport)
	if reply.File == nil {
		status := fiber.StatusInternalServerError
		if reply.Kind == dto.ReplyMissingData {
			status = fiber.StatusNotFound
		}
		return fiber.NewError(status, reply.Text)
	}

	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, reply.File.Filename))
	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return ctx.Send(reply.File.Content)
}

func (c *chatController) GetArchive(ctx *fiber.Ctx) error {
	res, err := c.dialogueService.Archive(ctx.UserContext(), serverutils.UserID(ctx))
	if errors.Is(err, service.ErrArchiveDisabled) {
		return fiber.NewError(fiber.StatusNotFound, constant.ArchiveDisabledMessage)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get archive", res))
}
