package controller

import (
	"context"
	"strconv"

	"notekeep-be/internal/dto"
	"notekeep-be/internal/pkg/serverutils"
	"notekeep-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Board(ctx *fiber.Ctx) error
	Archived(ctx *fiber.Ctx) error
	Trash(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	ChangeColor(ctx *fiber.Ctx) error
	TogglePin(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	Unarchive(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	BulkDelete(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
	SaveOrder(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
	jwtSecret   string
}

func NewNoteController(noteService service.INoteService, jwtSecret string) INoteController {
	return &noteController{
		noteService: noteService,
		jwtSecret:   jwtSecret,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(serverutils.NewJwtMiddleware(c.jwtSecret))

	h.Get("notes", c.Board)
	h.Get("notes/archived", c.Archived)
	h.Get("notes/trash", c.Trash)
	h.Get("notes/search", c.Search)
	h.Post("notes", c.Create)
	h.Post("notes/bulk-delete", c.BulkDelete)
	h.Post("notes/move", c.Move)
	h.Put("notes/reorder", c.SaveOrder)

	h.Get("notes/:id", c.Show)
	h.Put("notes/:id", c.Update)
	h.Patch("notes/:id/color", c.ChangeColor)
	h.Patch("notes/:id/pin", c.TogglePin)
	h.Patch("notes/:id/archive", c.Archive)
	h.Patch("notes/:id/unarchive", c.Unarchive)
	h.Post("notes/:id/restore", c.Restore)
	h.Delete("notes/:id", c.Delete)
}

func noteId(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid note id")
	}
	return id, nil
}

func (c *noteController) Board(ctx *fiber.Ctx) error {
	res, err := c.noteService.Board(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get notes", res))
}

func (c *noteController) Archived(ctx *fiber.Ctx) error {
	res, err := c.noteService.Archived(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get archived notes", res))
}

func (c *noteController) Trash(ctx *fiber.Ctx) error {
	res, err := c.noteService.Trash(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get trashed notes", res))
}

func (c *noteController) Search(ctx *fiber.Ctx) error {
	res, err := c.noteService.Search(ctx.UserContext(), serverutils.UserId(ctx), ctx.Query("q"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search notes", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.UserContext(), serverutils.UserId(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id

	res, err := c.noteService.Update(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) ChangeColor(ctx *fiber.Ctx) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	var req dto.ChangeColorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id

	res, err := c.noteService.ChangeColor(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success change note color", res))
}

func (c *noteController) TogglePin(ctx *fiber.Ctx) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.TogglePin(ctx.UserContext(), serverutils.UserId(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success toggle pin", res))
}

func (c *noteController) Archive(ctx *fiber.Ctx) error {
	return c.flip(ctx, c.noteService.Archive, "Success archive note")
}

func (c *noteController) Unarchive(ctx *fiber.Ctx) error {
	return c.flip(ctx, c.noteService.Unarchive, "Success unarchive note")
}

func (c *noteController) Restore(ctx *fiber.Ctx) error {
	return c.flip(ctx, c.noteService.Restore, "Success restore note")
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	return c.flip(ctx, c.noteService.Delete, "Success delete note")
}

type noteAction func(ctx context.Context, userId uuid.UUID, id int64) error

func (c *noteController) flip(ctx *fiber.Ctx, action noteAction, message string) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	if err := action(ctx.UserContext(), serverutils.UserId(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any](message, nil))
}

func (c *noteController) BulkDelete(ctx *fiber.Ctx) error {
	var req dto.BulkDeleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.noteService.BulkDelete(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete notes", res))
}

func (c *noteController) Move(ctx *fiber.Ctx) error {
	var req dto.MoveNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Move(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success move note", res))
}

func (c *noteController) SaveOrder(ctx *fiber.Ctx) error {
	var req dto.ReorderNotesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.noteService.SaveOrder(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save note order", res))
}
