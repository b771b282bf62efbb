package web

import (
	"errors"

	"github.com/dukex/leadflow/pkg/graph"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/dukex/leadflow/pkg/validation"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// validationProblem is a conflict problem carrying the validator output that
// blocked the request.
type validationProblem struct {
	*problems.DefaultProblem

	Validation validation.Result `json:"validation"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var publishErr *services.PublishError

	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case errors.As(err, &publishErr):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("workflow_invalid").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(validationProblem{
			DefaultProblem: problem,
			Validation:     publishErr.Result,
		})

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow_not_found", "workflow not found")

	case graph.IsNodeNotFound(err):
		return notFound(c, "node_not_found", err.Error())

	case graph.IsEdgeNotFound(err):
		return notFound(c, "edge_not_found", err.Error())

	default:
		return internalError(c, err)
	}
}
