package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/procuredesk/pkg/app"
	"github.com/ghuser/procuredesk/services/document/application/handlers"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// DocumentRoutes registers purchase order and invoice endpoints on the provided chi router.
func DocumentRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	post := handlers.NewPostDocumentHandler(svcs, a.Logger)
	put := handlers.NewPutDocumentHandler(svcs, a.Logger)

	r.Group(func(r chi.Router) {
		r.Route("/purchase-orders", documentRoutes(svcs, a, models.KindPurchaseOrder, post.PurchaseOrder, put.PurchaseOrder))
		r.Route("/invoices", documentRoutes(svcs, a, models.KindInvoice, post.Invoice, put.Invoice))
	})
}

func documentRoutes(svcs *appsvcs.Services, a *app.Application, kind models.Kind, create, update http.HandlerFunc) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", create)
		r.Get("/", handlers.NewListDocumentsHandler(svcs, a.Logger, kind).Execute)
		r.Post("/bulk", handlers.NewPostBulkHandler(svcs, a.Logger, kind).Execute)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.NewGetDocumentHandler(svcs, a.Logger, kind).Execute)
			r.Put("/", update)
			r.Delete("/", handlers.NewDeleteDocumentHandler(svcs, a.Logger, kind).Execute)
			r.Patch("/status", handlers.NewPatchDocumentStatusHandler(svcs, a.Logger, kind).Execute)
		})
	}
}
