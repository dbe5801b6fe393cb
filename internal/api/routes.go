package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/panverse/rules-agent/internal/api/middleware"
	"github.com/panverse/rules-agent/internal/balance"
	"github.com/panverse/rules-agent/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/categories").
			To(handler.Categories).
			Doc("List supported content types").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Writes(CategoriesResponse{}).
			Returns(200, "OK", CategoriesResponse{}))

	ws.
		Route(ws.POST("/validate").
			To(handler.Validate).
			Doc("Validate generated content").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Reads(models.Request{}).
			Writes(models.Result{}).
			Returns(200, "OK", models.Result{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(422, "Unsupported Content Type", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/balance").
			To(handler.Balance).
			Doc("Check encounter balance for one monster group").
			Metadata(restfulspec.KeyOpenAPITags, []string{"balance"}).
			Reads(BalanceRequest{}).
			Writes(balance.Assessment{}).
			Returns(200, "OK", balance.Assessment{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
