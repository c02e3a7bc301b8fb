package controller

import (
	"net/http"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/middleware"
	"github.com/eventsoc/soc-backend/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ApplicationController struct {
	ApplicationService *service.ApplicationService
}

type applyRequest struct {
	EventID string `json:"event_id" binding:"required,objectid"`
}

func (c *ApplicationController) Apply(ctx *gin.Context) {
	var req applyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	eventID, _ := bson.ObjectIDFromHex(req.EventID)
	authCtx := middleware.AuthContext(ctx)

	application, err := c.ApplicationService.Apply(ctx.Request.Context(), authCtx.UserID, eventID)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, application)
}

func (c *ApplicationController) ReadApplicants(ctx *gin.Context) {
	if hex := ctx.Query("eventId"); hex != "" {
		eventID, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		applications, err := c.ApplicationService.FindManyByEventID(ctx.Request.Context(), eventID)
		if err != nil {
			WriteError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, applications)
		return
	}

	applications, err := c.ApplicationService.FindAll(ctx.Request.Context())
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, applications)
}

type updateApplicationRequest struct {
	Status entity.ApplicationStatus `json:"status" binding:"required"`
}

func (c *ApplicationController) UpdateApplication(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := c.ApplicationService.UpdateStatus(ctx.Request.Context(), id, req.Status); err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "application updated"})
}
