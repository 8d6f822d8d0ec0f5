package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/credentis/credentis/pkg/consent"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/trigger"
	"github.com/credentis/credentis/pkg/trust"
	"github.com/credentis/credentis/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
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

// handleServiceError maps domain errors onto RFC 7807 responses. Unknown
// errors fall through to a 500 without exposing their details as a type.
func handleServiceError(c fiber.Ctx, err error) error {
	var (
		missingFields *trigger.MissingFieldsError
		unknownAction *workflow.UnknownActionError
		badInput      *workflow.InputValidationError
	)

	switch {
	case persistence.IsNotFound(err):
		return notFound(c, err.Error())

	case errors.Is(err, trigger.ErrTriggerInactive),
		errors.Is(err, trigger.ErrTriggerWrongType):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("trigger_not_invocable").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, trigger.ErrBadSignature):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("bad_signature").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.As(err, &missingFields):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("missing_required_fields").
			WithDetail(missingFields.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.As(err, &unknownAction):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("unknown_action").
			WithDetail(unknownAction.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.As(err, &badInput):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("input_validation_error").
			WithDetail(badInput.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, trust.ErrNoTrustEvents):
		return notFound(c, err.Error())

	case errors.Is(err, consent.ErrConsentExpired):
		problem := problems.NewStatusProblem(403).
			WithInstance(c.Path()).
			WithType("consent_expired").
			WithDetail(err.Error())

		return c.Status(fiber.StatusForbidden).JSON(problem)

	default:
		return internalError(c, err)
	}
}
