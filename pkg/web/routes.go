package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts every API endpoint on the app. Kept separate from
// server construction so tests can mount the same routes on a bare app.
func RegisterRoutes(app *fiber.App, handlers *APIHandlers) {
	app.Get("/health", handlers.HealthCheck)

	w := app.Group("/workflows")
	w.Get("/", handlers.ListWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)

	tr := app.Group("/triggers")
	tr.Get("/", handlers.ListTriggers)
	tr.Post("/", handlers.CreateTrigger)
	tr.Get("/:id", handlers.GetTrigger)
	tr.Delete("/:id", handlers.DeleteTrigger)
	tr.Post("/:id/activate", handlers.ActivateTrigger)
	tr.Post("/:id/deactivate", handlers.DeactivateTrigger)
	tr.Post("/webhook/:id/invoke", handlers.InvokeWebhook)

	app.Post("/events/emit", handlers.EmitEvent)

	p := app.Group("/providers")
	p.Get("/", handlers.ListProviders)
	p.Post("/", handlers.CreateProvider)
	p.Get("/:id", handlers.GetProvider)
	p.Delete("/:id", handlers.DeleteProvider)

	ts := app.Group("/trust")
	ts.Get("/:subjectId/score", handlers.GetTrustScore)
	ts.Post("/:subjectId/events", handlers.RecordTrustEvent)

	cs := app.Group("/consents")
	cs.Post("/", handlers.CaptureConsent)
	cs.Post("/verify", handlers.VerifyConsent)
	cs.Post("/revoke", handlers.RevokeConsent)
}
