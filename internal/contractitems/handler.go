package contractitems

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes wires line-item endpoints. r carries the manager-level
// mutations, ro the authenticated reads, admin the delete.
func RegisterRoutes(r gin.IRoutes, ro gin.IRoutes, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/contract-items", h.Create)
	ro.GET("/contract-items", h.List)
	ro.GET("/contract-items/:id", h.Get)
	r.PUT("/contract-items/:id", h.Update)
	admin.DELETE("/contract-items/:id", h.Delete)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid id")))
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary  Add a line item to a contract
// @Tags     contract-items
// @Accept   json
// @Produce  json
// @Param    body body CreateItemRequest true "item"
// @Success  201 {object} ItemResponse
// @Router   /contract-items [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid json or missing required fields")))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// List filters by contract_id or product_id; exactly one is required.
func (h *Handler) List(c *gin.Context) {
	if v := c.Query("contract_id"); v != "" {
		contractID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || contractID <= 0 {
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid contract_id")))
			return
		}
		res, err := h.svc.ListByContract(c.Request.Context(), contractID)
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}
	if v := c.Query("product_id"); v != "" {
		productID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || productID <= 0 {
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid product_id")))
			return
		}
		res, err := h.svc.ListByProduct(c.Request.Context(), productID)
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("contract_id or product_id is required")))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid json")))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
