package httpserver

import (
	"context"
	"log"

	"retail-backend/internal/domain"
	orderrepo "retail-backend/internal/repository/order"
	ordersvc "retail-backend/internal/service/order"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartService is the cart surface consumed by the handlers.
type CartService interface {
	AddItem(ctx context.Context, actor domain.Actor, productID int64, quantity int) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, actor domain.Actor, lineID int64, quantity int) (*domain.CartLine, error)
	Remove(ctx context.Context, actor domain.Actor, lineID int64) error
	Clear(ctx context.Context, actor domain.Actor) error
	SaveForLater(ctx context.Context, actor domain.Actor, lineID int64) (*domain.CartLine, error)
	RestoreToCart(ctx context.Context, actor domain.Actor, lineID int64) (*domain.CartLine, error)
	GetActive(ctx context.Context, actor domain.Actor) (*domain.CartView, error)
	GetSaved(ctx context.Context, actor domain.Actor) ([]domain.CartLine, error)
}

// OrderService is the order lifecycle surface consumed by the handlers.
type OrderService interface {
	Create(ctx context.Context, actor domain.Actor, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	List(ctx context.Context, actor domain.Actor, f orderrepo.ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id int64, status string) (*domain.Order, error)
	Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	Stats(ctx context.Context, actor domain.Actor) (*domain.OrderStats, error)
}

// InventoryService is the stock ledger surface consumed by the handlers.
type InventoryService interface {
	AddStock(ctx context.Context, actor domain.Actor, productID, warehouseID int64, quantity int, notes string) (*domain.InventoryRecord, error)
	AdjustStock(ctx context.Context, actor domain.Actor, productID, warehouseID int64, delta int, notes string) (*domain.InventoryRecord, error)
	SetThreshold(ctx context.Context, actor domain.Actor, productID, warehouseID int64, threshold int) (*domain.InventoryRecord, error)
	GetByProduct(ctx context.Context, productID int64) ([]domain.InventoryRecord, error)
	GetByWarehouse(ctx context.Context, warehouseID int64, lowStockOnly bool) ([]domain.InventoryRecord, error)
	GetLowStock(ctx context.Context, warehouseID int64) ([]domain.InventoryRecord, error)
	GetMovements(ctx context.Context, productID int64, page int) ([]domain.StockMovement, error)
	GetStats(ctx context.Context, actor domain.Actor) (*domain.InventoryStats, error)
}

// Deps bundles the services the router needs.
type Deps struct {
	CartSvc      CartService
	OrderSvc     OrderService
	InventorySvc InventoryService
}

// buildRouter wires routes for the API. All business routes require a
// resolved actor; authentication itself happens upstream.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-User-ID", "X-User-Role")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/", actorMiddleware())

	cart := api.Group("/cart")
	cart.GET("", getCartHandler(deps.CartSvc))
	cart.GET("/saved", getSavedCartHandler(deps.CartSvc))
	cart.POST("/add", addCartItemHandler(deps.CartSvc))
	cart.PUT("/:id", updateCartItemHandler(deps.CartSvc))
	cart.DELETE("/:id", removeCartItemHandler(deps.CartSvc))
	cart.DELETE("", clearCartHandler(deps.CartSvc))
	cart.POST("/:id/save", saveCartItemHandler(deps.CartSvc))
	cart.POST("/:id/restore", restoreCartItemHandler(deps.CartSvc))

	orders := api.Group("/orders")
	orders.POST("", createOrderHandler(deps.OrderSvc))
	orders.GET("", listOrdersHandler(deps.OrderSvc))
	orders.GET("/stats", orderStatsHandler(deps.OrderSvc))
	orders.GET("/:id", getOrderHandler(deps.OrderSvc))
	orders.POST("/:id/status", updateOrderStatusHandler(deps.OrderSvc))
	orders.POST("/:id/cancel", cancelOrderHandler(deps.OrderSvc))

	inv := api.Group("/inventory")
	inv.GET("/stats", inventoryStatsHandler(deps.InventorySvc))
	inv.GET("/product/:id", inventoryByProductHandler(deps.InventorySvc))
	inv.GET("/product/:id/movements", movementsHandler(deps.InventorySvc))
	inv.POST("/product/:id/add-stock", addStockHandler(deps.InventorySvc))
	inv.POST("/product/:id/adjust-stock", adjustStockHandler(deps.InventorySvc))
	inv.POST("/product/:id/set-threshold", setThresholdHandler(deps.InventorySvc))
	inv.GET("/warehouse/:id", inventoryByWarehouseHandler(deps.InventorySvc))
	inv.GET("/warehouse/:id/low-stock", lowStockHandler(deps.InventorySvc))

	return router
}
