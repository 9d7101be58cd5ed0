package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helporphan/donations-api/internal/auth"
	"github.com/helporphan/donations-api/internal/validation"
	"github.com/helporphan/donations-api/internal/wishlist"
)

// RegisterWishlistRoutes wires the wishlist CRUD surface. Reads are public;
// create/update/delete require a verified admin identity. The fulfillment
// PATCH is deliberately public: it is the donor-flow companion to
// POST /donations (see DESIGN.md for the open question around gating it).
func RegisterWishlistRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := wishlist.NewStore(cfg.DynamoDBClient, cfg.WishlistTable)
	admin := auth.RequireAdmin(cfg.Verifier, cfg.AdminEmails)

	r.GET("/wishlist", func(c *gin.Context) {
		items, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
	})

	r.POST("/wishlist", admin, func(c *gin.Context) {
		var req validation.CreateItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		item, err := store.Create(c.Request.Context(), wishlist.Item{
			Item:      req.Item,
			Quantity:  req.Quantity,
			Urgency:   req.Urgency,
			Orphanage: req.Orphanage,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "item": item})
	})

	r.PUT("/wishlist/:id", admin, func(c *gin.Context) {
		var req validation.UpdateItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		item, err := store.Replace(c.Request.Context(), wishlist.Item{
			ItemID:      c.Param("id"),
			Item:        req.Item,
			Quantity:    req.Quantity,
			Urgency:     req.Urgency,
			Orphanage:   req.Orphanage,
			Fulfilled:   req.Fulfilled,
			CommittedBy: req.CommittedBy,
		})
		if err != nil {
			if errors.Is(err, wishlist.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
	})

	r.DELETE("/wishlist/:id", admin, func(c *gin.Context) {
		err := store.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, wishlist.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "item deleted"})
	})

	r.PATCH("/wishlist/:id", func(c *gin.Context) {
		var req validation.FulfillmentPatchRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		// the public patch is never guarded; strict mode only applies to the
		// server-side commitment workflow
		item, err := store.ApplyFulfillment(c.Request.Context(), c.Param("id"), *req.Fulfilled, req.CommittedBy, false)
		if err != nil {
			if errors.Is(err, wishlist.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "patch_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
	})
}
