// Package api exposes the pipeline over HTTP for the local web UI. The
// server is bound to localhost use: statement content is accepted in the
// request body, processed in memory, and never written to disk.
package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/finsafe/statement-anonymizer/internal/columns"
	"github.com/finsafe/statement-anonymizer/internal/engine"
	"github.com/finsafe/statement-anonymizer/internal/format"
	"github.com/finsafe/statement-anonymizer/internal/models"
)

const version = "1.0.0"

// maxBodySize bounds uploads; statement exports are small text files.
const maxBodySize = 32 << 20

// Server wires the pipeline into HTTP handlers.
type Server struct {
	pipeline *engine.Pipeline
	opts     models.Options
	log      zerolog.Logger
}

// NewServer builds a server around a configured pipeline.
func NewServer(p *engine.Pipeline, opts models.Options, log zerolog.Logger) *Server {
	return &Server{pipeline: p, opts: opts, log: log}
}

// App assembles the fiber application with routes and middleware.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             maxBodySize,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://127.0.0.1:3000",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Get("/api/health", s.HandleHealth)
	app.Post("/api/process", s.HandleProcess)
	app.Post("/api/preflight", s.HandlePreflight)
	return app
}

// processRequest is the body for /api/process and /api/preflight. Statement
// content arrives either as the text field or as a multipart "file" part.
type processRequest struct {
	Text        string   `json:"text" form:"text"`
	CustomTerms []string `json:"customTerms,omitempty" form:"customTerms"`
	SampleSize  int      `json:"sampleSize,omitempty" form:"sampleSize"`
	Encoding    string   `json:"encoding,omitempty" form:"encoding"`
	Detail      string   `json:"detail,omitempty" form:"detail"`
}

// processResponse wraps a run for the UI.
type processResponse struct {
	Success   bool                    `json:"success"`
	Error     string                  `json:"error,omitempty"`
	Result    *models.SanitizedResult `json:"result,omitempty"`
	Formatted string                  `json:"formatted,omitempty"`
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// HandleProcess runs the full pipeline over the posted statement text.
func (s *Server) HandleProcess(c *fiber.Ctx) error {
	req, opts, err := s.parseRequest(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err)
	}

	result, err := s.pipeline.Process(req.Text, opts)
	if err != nil {
		return writeError(c, statusFor(err), err)
	}

	formatted := ""
	if req.Encoding != "" {
		formatted, err = format.Render(result.Transactions, format.Options{
			Encoding: format.Encoding(req.Encoding),
			Detail:   format.DetailLevel(req.Detail),
		})
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err)
		}
	}

	s.log.Info().
		Str("run_id", result.RunID).
		Int("transactions", len(result.Transactions)).
		Int("redactions", result.Report.Total()).
		Msg("processed statement")

	return c.JSON(processResponse{Success: true, Result: result, Formatted: formatted})
}

// HandlePreflight dry-runs the pipeline over a bounded sample. No
// transaction content is returned.
func (s *Server) HandlePreflight(c *fiber.Ctx) error {
	req, opts, err := s.parseRequest(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err)
	}

	report, err := s.pipeline.Preflight(req.Text, models.PreflightOptions{
		Options:    opts,
		SampleSize: req.SampleSize,
	})
	if err != nil {
		return writeError(c, statusFor(err), err)
	}

	s.log.Info().
		Str("run_id", report.RunID).
		Int("sampled_rows", report.SampledRows).
		Msg("preflight complete")

	return c.JSON(fiber.Map{"success": true, "report": report})
}

func (s *Server) parseRequest(c *fiber.Ctx) (*processRequest, models.Options, error) {
	req := &processRequest{}
	if err := c.BodyParser(req); err != nil {
		return nil, models.Options{}, errors.New("request body must be JSON or form data")
	}
	if fh, err := c.FormFile("file"); err == nil {
		text, err := readUpload(fh)
		if err != nil {
			return nil, models.Options{}, err
		}
		req.Text = text
	}
	if req.Text == "" {
		return nil, models.Options{}, errors.New("provide a \"text\" field or a \"file\" upload")
	}
	opts := s.opts
	opts.CustomTerms = append(append([]string(nil), opts.CustomTerms...), req.CustomTerms...)
	return req, opts, nil
}

func readUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %q: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading upload %q: %w", fh.Filename, err)
	}
	return string(data), nil
}

// statusFor maps input-shape failures to 422 so the UI can distinguish
// "your file is not a statement" from a malformed request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrTooFewRows),
		errors.Is(err, columns.ErrNoDateColumn),
		errors.Is(err, columns.ErrNoMonetaryColumn):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(processResponse{Success: false, Error: err.Error()})
}
