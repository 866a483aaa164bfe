package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"fileforge/internal/http/middleware"
	"fileforge/internal/service"
)

// registerConvertRoutes wires the conversion pipeline endpoints.
//
// POST /convert accepts multipart/form-data with the file under "file" and
// optional form fields chunk_strategy, chunk_size, chunk_overlap and mode
// ("sync" or "async"). Sync runs the pipeline inline and returns the
// completed document; async returns 202 with the pending document.
func registerConvertRoutes(r fiber.Router, d Deps) {
	r.Get("/formats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"extensions": d.Convert.SupportedExtensions()})
	})

	r.Post("/convert", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		params := service.ConvertParams{
			ChunkStrategy: c.FormValue("chunk_strategy"),
			ChunkSize:     formInt(c, "chunk_size"),
			ChunkOverlap:  formInt(c, "chunk_overlap"),
		}

		doc, err := d.Convert.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size, middleware.UserID(c), params)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnsupportedFormat):
				return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error())
			case errors.Is(err, service.ErrFileTooLarge):
				return writeError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		if c.FormValue("mode", "sync") == "async" && d.AsyncEnabled {
			if err := d.Convert.Enqueue(c.UserContext(), doc); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "conversion queue unavailable")
			}
			return c.Status(fiber.StatusAccepted).JSON(doc)
		}

		done, err := d.Convert.Process(c.UserContext(), doc.ID)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(done)
	})
}

func formInt(c *fiber.Ctx, name string) int {
	v := c.FormValue(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
