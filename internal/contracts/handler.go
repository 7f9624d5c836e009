package contracts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes wires contract endpoints. r is the manager-level group for
// mutations, ro the read-only authenticated group, admin the delete group.
func RegisterRoutes(r gin.IRoutes, ro gin.IRoutes, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/contracts", h.Create)
	ro.GET("/contracts", h.List)
	ro.GET("/contracts/late", h.ListLate)
	ro.GET("/contracts/range", h.FindByDateRange)
	ro.GET("/contracts/stats/monthly", h.MonthlyCounts)
	ro.GET("/contracts/stats/revenue", h.MonthlyRevenue)
	ro.GET("/contracts/number/:number", h.GetByNumber)
	ro.GET("/contracts/:id", h.Get)
	r.PUT("/contracts/:id", h.Update)
	r.PUT("/contracts/:id/status", h.UpdateStatus)
	admin.DELETE("/contracts/:id", h.Delete)
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
// @Summary  Create a rental contract with its line items
// @Tags     contracts
// @Accept   json
// @Produce  json
// @Param    body body CreateContractRequest true "contract"
// @Success  201 {object} ContractResponse
// @Router   /contracts [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateContractRequest
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

func (h *Handler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("contract number is required")))
		return
	}
	res, err := h.svc.GetByNumber(c.Request.Context(), number)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// List godoc
// @Summary  List contracts with optional filters
// @Tags     contracts
// @Produce  json
// @Param    customer_id query int false "filter by customer"
// @Param    status query string false "filter by status"
// @Success  200 {array} ContractResponse
// @Router   /contracts [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid customer_id")))
			return
		}
		f.CustomerID = &id
	}
	if v := c.Query("employee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid employee_id")))
			return
		}
		f.EmployeeID = &id
	}
	if v := c.Query("event_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid event_id")))
			return
		}
		f.EventID = &id
	}
	if v := c.Query("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}
	f.Limit = parseIntDefault(c.Query("limit"), 50)
	f.Offset = parseIntDefault(c.Query("offset"), 0)

	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListLate(c *gin.Context) {
	res, err := h.svc.ListLate(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// FindByDateRange godoc
// @Summary  List contracts whose pickup or return date falls in a range
// @Tags     contracts
// @Produce  json
// @Param    start query string true "start date (YYYY-MM-DD)"
// @Param    end query string true "end date (YYYY-MM-DD)"
// @Param    field query string false "pickupDate or returnDate" default(pickupDate)
// @Success  200 {array} ContractResponse
// @Router   /contracts/range [get]
func (h *Handler) FindByDateRange(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("start must be YYYY-MM-DD")))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("end must be YYYY-MM-DD")))
		return
	}
	field := c.DefaultQuery("field", "pickupDate")

	res, err := h.svc.FindByDateRange(c.Request.Context(), start, end, field)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateContractRequest
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

// UpdateStatus godoc
// @Summary  Move a contract through its lifecycle
// @Tags     contracts
// @Accept   json
// @Produce  json
// @Param    id path int true "contract id"
// @Param    body body UpdateStatusRequest true "new status"
// @Success  200 {object} ContractResponse
// @Router   /contracts/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("status is required")))
		return
	}
	res, err := h.svc.UpdateStatus(c.Request.Context(), id, Status(req.Status))
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

func (h *Handler) MonthlyCounts(c *gin.Context) {
	res, err := h.svc.MonthlyCounts(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MonthlyRevenue(c *gin.Context) {
	res, err := h.svc.MonthlyRevenue(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
