package controller

import (
	"net/http"
	"time"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/middleware"
	"github.com/eventsoc/soc-backend/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type EventController struct {
	EventService      *service.EventService
	MembershipService *service.MembershipService
	PinService        *service.PinService
	UserService       *service.UserService
}

type eventRequest struct {
	Name        string    `json:"name" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description"`
}

func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req eventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	authCtx := middleware.AuthContext(ctx)

	event, err := c.EventService.Create(ctx.Request.Context(), &entity.Event{
		Name:        req.Name,
		Location:    req.Location,
		Date:        req.Date,
		Description: req.Description,
		CreatedBy:   authCtx.UserID,
	})
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

func (c *EventController) ReadEvent(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	event, err := c.EventService.FindOneByID(ctx.Request.Context(), id)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

func (c *EventController) ReadEvents(ctx *gin.Context) {
	events, err := c.EventService.FindAll(ctx.Request.Context())
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

func (c *EventController) ReadUpcomingEvents(ctx *gin.Context) {
	events, err := c.EventService.FindUpcoming(ctx.Request.Context())
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

type batchRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (c *EventController) ReadMultipleEvents(ctx *gin.Context) {
	var req batchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	events, err := c.MembershipService.GetMany(ctx.Request.Context(), req.IDs)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

func (c *EventController) UpdateEvent(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req eventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	event, err := c.EventService.Update(ctx.Request.Context(), id, entity.Event{
		Name:        req.Name,
		Location:    req.Location,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

func (c *EventController) DropEvent(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := c.EventService.Delete(ctx.Request.Context(), id); err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

func (c *EventController) DropAllEvents(ctx *gin.Context) {
	deleted, err := c.EventService.DeleteAll(ctx.Request.Context())
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// JoinEvent adds the authenticated user to the event. The attendee
// snapshot is taken from the stored account, not the request body.
func (c *EventController) JoinEvent(ctx *gin.Context) {
	eventID, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	authCtx := middleware.AuthContext(ctx)

	user, err := c.UserService.FindOneByID(ctx.Request.Context(), authCtx.UserID)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	err = c.MembershipService.Join(ctx.Request.Context(), eventID, user.ID, user.Name, user.Email)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "joined event"})
}

func (c *EventController) LeaveEvent(ctx *gin.Context) {
	eventID, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	authCtx := middleware.AuthContext(ctx)

	if err := c.MembershipService.Leave(ctx.Request.Context(), eventID, authCtx.UserID); err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "left event"})
}

type pinRequest struct {
	Pinned *bool `json:"pinned" binding:"required"`
}

func (c *EventController) UpdatePinned(ctx *gin.Context) {
	eventID, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req pinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := c.PinService.SetPinned(ctx.Request.Context(), eventID, *req.Pinned); err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "pinned state updated"})
}
