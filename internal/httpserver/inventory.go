package httpserver

import (
	"net/http"
	"strconv"

	"retail-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

type stockMutationRequest struct {
	WarehouseID int64  `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes"`
}

type setThresholdRequest struct {
	WarehouseID int64 `json:"warehouse_id"`
	Threshold   int   `json:"threshold"`
}

func addStockHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req stockMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.WarehouseID <= 0 {
			badRequest(c, "warehouse_id required")
			return
		}
		rec, err := svc.AddStock(c.Request.Context(), actorFrom(c), productID, req.WarehouseID, req.Quantity, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func adjustStockHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req stockMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.WarehouseID <= 0 {
			badRequest(c, "warehouse_id required")
			return
		}
		rec, err := svc.AdjustStock(c.Request.Context(), actorFrom(c), productID, req.WarehouseID, req.Quantity, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func setThresholdHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req setThresholdRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.WarehouseID <= 0 {
			badRequest(c, "warehouse_id required")
			return
		}
		rec, err := svc.SetThreshold(c.Request.Context(), actorFrom(c), productID, req.WarehouseID, req.Threshold)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func inventoryByProductHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := paramID(c, "id")
		if !ok {
			return
		}
		records, err := svc.GetByProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": emptyIfNil(records)})
	}
}

func inventoryByWarehouseHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		warehouseID, ok := paramID(c, "id")
		if !ok {
			return
		}
		lowOnly := c.Query("low_stock") == "true"
		records, err := svc.GetByWarehouse(c.Request.Context(), warehouseID, lowOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": emptyIfNil(records)})
	}
}

func lowStockHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		warehouseID, ok := paramID(c, "id")
		if !ok {
			return
		}
		records, err := svc.GetLowStock(c.Request.Context(), warehouseID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": emptyIfNil(records)})
	}
}

func movementsHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := paramID(c, "id")
		if !ok {
			return
		}
		page := 1
		if raw := c.Query("page"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				badRequest(c, "invalid page")
				return
			}
			page = parsed
		}
		movements, err := svc.GetMovements(c.Request.Context(), productID, page)
		if err != nil {
			respondError(c, err)
			return
		}
		if movements == nil {
			movements = []domain.StockMovement{}
		}
		c.JSON(http.StatusOK, gin.H{"movements": movements, "page": page})
	}
}

func inventoryStatsHandler(svc InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.GetStats(c.Request.Context(), actorFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func emptyIfNil(records []domain.InventoryRecord) []domain.InventoryRecord {
	if records == nil {
		return []domain.InventoryRecord{}
	}
	return records
}
