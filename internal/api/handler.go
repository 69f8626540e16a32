package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-parser/internal/convert"
	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Format       string               `json:"format,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	TotalDebit   json.Number          `json:"totalDebit,omitempty"`
	TotalCredit  json.Number          `json:"totalCredit,omitempty"`
	Count        int                  `json:"count"`
	Fallback     bool                 `json:"fallback"`
	DebugLines   []models.DebugLine   `json:"debugLines,omitempty"`
}

// FormatInfo describes one grammar for /api/formats.
type FormatInfo struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Layout bool   `json:"layout,omitempty"`
	Pages  []int  `json:"pages,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	// Year overrides the grammar default year when a request gives none.
	Year    int
	Version string
	Log     zerolog.Logger
}

// NewApp returns a fiber app with the API routes and middleware installed.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return writeError(c, code, err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, GET, OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api", h.requestLogger)
	api.Get("/health", h.HandleHealth)
	api.Get("/formats", h.HandleFormats)
	api.Post("/convert", h.HandleConvert)
}

// requestLogger puts a request-scoped logger in the user context.
func (h *Handler) requestLogger(c *fiber.Ctx) error {
	log := h.Log.With().Str("method", c.Method()).Str("path", c.Path()).Logger()
	c.SetUserContext(logger.WithContext(c.UserContext(), log))
	return c.Next()
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

func (h *Handler) HandleFormats(c *fiber.Ctx) error {
	var formats []FormatInfo
	for _, g := range parser.Grammars() {
		formats = append(formats, FormatInfo{
			Name:   string(g.Name),
			Title:  g.Title,
			Layout: g.Layout,
			Pages:  g.Pages,
		})
	}
	return c.JSON(fiber.Map{"formats": formats})
}

func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	log := logger.FromContext(c.UserContext())

	formatParam := strings.ToLower(strings.TrimSpace(c.FormValue("format")))
	if formatParam == "" {
		return writeError(c, fiber.StatusBadRequest,
			fmt.Sprintf("No format given. Use one of: %s.", strings.Join(parser.FormatNames(), ", ")))
	}

	year := h.Year
	if v := strings.TrimSpace(c.FormValue("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid year %q.", v))
		}
		year = y
	}

	eng, err := parser.New(models.Format(formatParam), parser.WithYear(year), parser.WithLogger(log))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Unknown format: %q. Use one of: %s.", formatParam, strings.Join(parser.FormatNames(), ", ")))
	}

	// Pre-extracted text (from client-side pdf.js extraction) skips the server extractor
	var batch *models.Batch
	if pages := convert.SplitPages(c.FormValue("extractedText")); len(pages) > 0 {
		batch = eng.Parse(pages)
	} else {
		if batch, err = h.convertUpload(c, eng); err != nil {
			return err
		}
	}

	// Ensure transactions is never nil (nil marshals to JSON null, not [])
	txns := batch.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}
	debit, credit := batch.Totals()

	log.Info().
		Str("format", formatParam).
		Int("transactions", len(txns)).
		Bool("fallback", batch.Fallback).
		Msg("statement converted")

	return c.JSON(ConvertResponse{
		Success:      true,
		Format:       string(batch.Format),
		Transactions: txns,
		TotalDebit:   json.Number(debit.StringFixed(2)),
		TotalCredit:  json.Number(credit.StringFixed(2)),
		Count:        len(txns),
		Fallback:     batch.Fallback,
		DebugLines:   batch.DebugLines,
	})
}

// convertUpload saves the uploaded PDF to a temp file and runs the
// extractor on it. Failures are returned as *fiber.Error for the app's
// error handler.
func (h *Handler) convertUpload(c *fiber.Ctx, p parser.Parser) (*models.Batch, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	tmpFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	if err := c.SaveFile(header, tmpFile.Name()); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	batch, err := convert.File(tmpFile.Name(), p)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}
	return batch, nil
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
