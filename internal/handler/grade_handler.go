package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/llm"
	"github.com/mselheim/routegrader/internal/schema"
	"github.com/mselheim/routegrader/internal/utils"
)

// GradeHandler exposes the grading pipeline over multipart uploads.
type GradeHandler struct {
	client     llm.Client
	opts       grader.Options
	resultsDir string
	logger     zerolog.Logger
}

// NewGradeHandler constructs a grading handler. Results are written to
// resultsDir as flat JSON files in addition to being returned in the
// response.
func NewGradeHandler(client llm.Client, opts grader.Options, resultsDir string, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		client:     client,
		opts:       opts,
		resultsDir: resultsDir,
		logger:     logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register wires grading routes.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("/grade", h.grade)
	router.Post("/grade/solution", h.gradeSolution)
	router.Post("/grade/text", h.gradeText)
}

// saveUpload persists one multipart file into the request's scratch
// directory so the preparation helpers can read it from disk.
func saveUpload(c *fiber.Ctx, dir string, file *multipart.FileHeader) (string, error) {
	path := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return "", fmt.Errorf("save upload %s: %w", file.Filename, err)
	}
	return path, nil
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	routeFile, err := c.FormFile("route")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "route file is required")
	}
	notebookFile, err := c.FormFile("notebook")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "notebook file is required")
	}

	dir, err := os.MkdirTemp("", "grade-")
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}
	defer os.RemoveAll(dir)

	routePath, err := saveUpload(c, dir, routeFile)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}
	notebookPath, err := saveUpload(c, dir, notebookFile)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}

	gctx, err := grader.PrepareContext(routePath, notebookPath, c.FormValue("route_id"), c.FormValue("student_id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := grader.Grade(c.UserContext(), h.client, gctx, h.opts)
	if err != nil {
		return h.handleGradingError(c, err)
	}

	return h.respond(c, result)
}

func (h *GradeHandler) gradeSolution(c *fiber.Ctx) error {
	solutionFile, err := c.FormFile("solution")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "solution file is required")
	}
	notebookFile, err := c.FormFile("notebook")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "notebook file is required")
	}

	dir, err := os.MkdirTemp("", "grade-")
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}
	defer os.RemoveAll(dir)

	solutionPath, err := saveUpload(c, dir, solutionFile)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}
	notebookPath, err := saveUpload(c, dir, notebookFile)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}

	sctx, err := grader.PrepareSolutionContext(solutionPath, notebookPath, c.FormValue("route_id"), c.FormValue("student_id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := grader.GradeWithSolution(c.UserContext(), h.client, sctx, h.opts)
	if err != nil {
		return h.handleGradingError(c, err)
	}

	return h.respond(c, result)
}

func (h *GradeHandler) gradeText(c *fiber.Ctx) error {
	routeFile, err := c.FormFile("route")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "route file is required")
	}
	deliverableFile, err := c.FormFile("deliverable")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "deliverable file is required")
	}

	dir, err := os.MkdirTemp("", "grade-")
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}
	defer os.RemoveAll(dir)

	routePath, err := saveUpload(c, dir, routeFile)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}
	deliverablePath, err := saveUpload(c, dir, deliverableFile)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
	}

	logbookPath := ""
	if logbookFile, err := c.FormFile("logbook"); err == nil {
		logbookPath, err = saveUpload(c, dir, logbookFile)
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, "could not stage uploads")
		}
	}

	tctx, err := grader.PrepareTextContext(routePath, deliverablePath, logbookPath, c.FormValue("route_id"), c.FormValue("student_id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := grader.GradeText(c.UserContext(), h.client, tctx, h.opts)
	if err != nil {
		return h.handleGradingError(c, err)
	}

	return h.respond(c, result)
}

func (h *GradeHandler) handleGradingError(c *fiber.Ctx, err error) error {
	var gradingErr *grader.GradingError
	var httpErr *llm.HTTPError

	switch {
	case errors.Is(err, grader.ErrEmptySolution):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &gradingErr):
		requestLogger(h.logger, c).Error().Err(err).Msg("model output could not be repaired")
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	case errors.As(err, &httpErr), errors.Is(err, llm.ErrRateLimited):
		requestLogger(h.logger, c).Error().Err(err).Msg("provider request failed")
		return utils.SendError(c, fiber.StatusBadGateway, "provider request failed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("grading failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "grading failed")
	}
}

// respond persists the result to the results directory and returns it.
// Persistence failures are logged but do not fail the request.
func (h *GradeHandler) respond(c *fiber.Ctx, result *schema.GradingResult) error {
	if h.resultsDir != "" {
		if err := h.writeResult(result); err != nil {
			requestLogger(h.logger, c).Warn().Err(err).Msg("could not persist grading result")
		}
	}

	return utils.SendSuccess(c, "grading complete", result)
}

func (h *GradeHandler) writeResult(result *schema.GradingResult) error {
	if err := os.MkdirAll(h.resultsDir, 0o755); err != nil {
		return err
	}

	stem := uuid.NewString()
	if result.StudentID != nil && *result.StudentID != "" {
		stem = sanitizeStem(*result.StudentID)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(h.resultsDir, stem+"_grading.json"), data, 0o644)
}

func sanitizeStem(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
