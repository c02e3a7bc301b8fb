package controller

import (
	"net/http"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/middleware"
	"github.com/eventsoc/soc-backend/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserController struct {
	UserService *service.UserService
	AuthService *service.AuthService
}

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Wallet   string `json:"wallet"`
}

func (c *UserController) SignUp(ctx *gin.Context) {
	var req signUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := c.UserService.Register(ctx.Request.Context(), &entity.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Wallet:   req.Wallet,
	})
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (c *UserController) Profile(ctx *gin.Context) {
	authCtx := middleware.AuthContext(ctx)

	user, events, applications, err := c.UserService.Profile(ctx.Request.Context(), authCtx.UserID)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":         user,
		"events":       events,
		"applications": applications,
	})
}

func (c *UserController) ReadUsers(ctx *gin.Context) {
	users, err := c.UserService.FindAll(ctx.Request.Context())
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (c *UserController) ReadUser(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	user, err := c.UserService.FindOneByID(ctx.Request.Context(), id)
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Wallet string `json:"wallet"`
}

func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	// Users may update themselves; admins may update anyone.
	authCtx := middleware.AuthContext(ctx)
	if !authCtx.Admin && authCtx.UserID != id {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req updateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := c.UserService.Update(ctx.Request.Context(), id, entity.User{
		Name:   req.Name,
		Email:  req.Email,
		Wallet: req.Wallet,
	})
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

type adminRequest struct {
	Admin *bool `json:"admin" binding:"required"`
}

func (c *UserController) UpdateAdmin(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req adminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := c.AuthService.SetAdmin(ctx.Request.Context(), id, *req.Admin); err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "admin flag updated"})
}

func (c *UserController) DropUser(ctx *gin.Context) {
	id, err := bson.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := c.UserService.Delete(ctx.Request.Context(), id); err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (c *UserController) DropAllUsers(ctx *gin.Context) {
	deleted, err := c.UserService.DeleteAll(ctx.Request.Context())
	if err != nil {
		WriteError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
