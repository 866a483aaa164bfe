package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fileforge/internal/model"
	"fileforge/internal/repository"
	"fileforge/internal/service"
)

func registerDocumentRoutes(r fiber.Router, d Deps) {
	docs := r.Group("/documents")

	docs.Get("", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		filter := repository.DocumentFilter{
			Status:   model.DocumentStatus(c.Query("status")),
			FileType: c.Query("file_type"),
		}

		res, err := d.Documents.List(c.UserContext(), limit, offset, filter)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	})

	docs.Get("/:id", func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := d.Documents.Get(c.UserContext(), id)
		if err != nil {
			return documentError(c, err)
		}
		return c.JSON(doc)
	})

	docs.Get("/:id/chunks", func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		chunks, err := d.Documents.Chunks(c.UserContext(), id)
		if err != nil {
			return documentError(c, err)
		}
		return c.JSON(fiber.Map{"data": chunks, "total": len(chunks)})
	})

	docs.Get("/:id/llm", func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		includeRaw := c.QueryBool("raw", false)
		out, err := d.Documents.LLMFormat(c.UserContext(), id, includeRaw)
		if err != nil {
			return documentError(c, err)
		}
		return c.JSON(out)
	})

	docs.Post("/:id/reprocess", func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := d.Documents.Reprocess(c.UserContext(), id)
		if err != nil {
			return documentError(c, err)
		}
		if c.Query("mode", "sync") == "async" && d.AsyncEnabled {
			if err := d.Convert.Enqueue(c.UserContext(), doc); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "conversion queue unavailable")
			}
			return c.Status(fiber.StatusAccepted).JSON(doc)
		}
		done, err := d.Convert.Process(c.UserContext(), doc.ID)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(done)
	})

	docs.Delete("/:id", func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := d.Documents.Delete(c.UserContext(), id); err != nil {
			return documentError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func documentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
