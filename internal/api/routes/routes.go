package routes

import (
	"farm-coop-api-server/config"
	"farm-coop-api-server/internal/api/handlers"
	"farm-coop-api-server/internal/api/middleware"
	"farm-coop-api-server/internal/s3"
	"farm-coop-api-server/internal/socket"
	"farm-coop-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires every handler to the shared store and hub and lays out
// the role-gated route groups.
func SetupRouter(
	cfg config.Config,
	st store.Store,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	userHandler := &handlers.UserHandler{Store: st, Cfg: cfg}
	orderHandler := &handlers.OrderHandler{Store: st, Hub: wsHub}
	productHandler := &handlers.ProductHandler{Store: st, S3Uploader: s3Uploader}
	itemHandler := &handlers.ItemHandler{Store: st}
	vendorHandler := &handlers.VendorHandler{Store: st}
	facilityHandler := &handlers.FacilityHandler{Store: st, S3Uploader: s3Uploader}
	salesHandler := &handlers.SalesHandler{Store: st}
	catalogHandler := &handlers.CatalogHandler{Store: st}
	cartHandler := &handlers.CartHandler{Store: st}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Store: st}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
			auth.POST("/register", userHandler.Register)
		}

		// Public catalogue: the storefront is browsable without an account.
		public := apiV1.Group("/")
		{
			public.GET("/products", productHandler.GetProducts)
			public.GET("/vegetables", catalogHandler.GetVegetables)
			public.GET("/contacts", catalogHandler.GetContacts)
			public.GET("/locations", catalogHandler.GetLocations)
			public.GET("/facilities", facilityHandler.GetFacilities)
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("admin"))
		{
			admin.POST("/users", userHandler.CreateUser)
			admin.GET("/users", userHandler.GetUsers)
			admin.PUT("/users", userHandler.UpdateUser)

			facilities := admin.Group("/facilities")
			{
				facilities.POST("/", facilityHandler.CreateFacility)
				facilities.PUT("/:name/settings", facilityHandler.UpdateSettings)
				facilities.POST("/:name/members", facilityHandler.AddMember)
				facilities.DELETE("/:name/members/:email", facilityHandler.RemoveMember)
				facilities.POST("/:name/icon", facilityHandler.UploadFacilityIcon)
				facilities.DELETE("/:name", facilityHandler.DeleteFacility)
			}

			admin.POST("/vegetables", catalogHandler.CreateVegetable)
			admin.DELETE("/vegetables/:name", catalogHandler.DeleteVegetable)
			admin.POST("/contacts", catalogHandler.CreateContact)
			admin.POST("/locations", catalogHandler.CreateLocation)

			admin.DELETE("/orders/:id", orderHandler.DeleteOrder)
		}

		client := apiV1.Group("/client")
		client.Use(middleware.Authenticate())
		client.Use(middleware.Authorize("client", "admin"))
		{
			client.POST("/orders", orderHandler.PlaceOrder)
			client.GET("/orders", orderHandler.GetMyOrders)
			client.POST("/orders/:id/cancel", orderHandler.CancelOrder)

			cart := client.Group("/cart")
			{
				cart.GET("/", cartHandler.GetCart)
				cart.POST("/", cartHandler.AddToCart)
				cart.PUT("/:product", cartHandler.UpdateQuantity)
				cart.DELETE("/:product", cartHandler.RemoveFromCart)
				cart.DELETE("/", cartHandler.ClearCart)
			}
		}

		coop := apiV1.Group("/coop")
		coop.Use(middleware.Authenticate())
		coop.Use(middleware.Authorize("coop", "admin"))
		{
			coop.GET("/orders", orderHandler.GetOrders)
			coop.POST("/orders/:id/decision", orderHandler.DecideOrder)
			coop.POST("/orders/:id/status", orderHandler.AdvanceStatus)
			coop.GET("/transactions", orderHandler.GetTransactions)

			products := coop.Group("/products")
			{
				products.POST("/", productHandler.CreateProduct)
				products.PUT("/:name", productHandler.UpdateProduct)
				products.DELETE("/:name", productHandler.DeleteProduct)
				products.POST("/:name/image", productHandler.UploadProductImage)
			}

			vendors := coop.Group("/vendors")
			{
				vendors.GET("/", vendorHandler.GetVendors)
				vendors.POST("/", vendorHandler.CreateVendor)
				vendors.PUT("/:email", vendorHandler.UpdateVendor)
				vendors.DELETE("/:email", vendorHandler.DeleteVendor)
				vendors.POST("/:email/toggle", vendorHandler.ToggleVendorStatus)
			}

			sales := coop.Group("/sales")
			{
				sales.GET("/", salesHandler.GetSales)
				sales.POST("/", salesHandler.CreateSale)
				sales.PUT("/:number", salesHandler.UpdateSale)
				sales.DELETE("/:number", salesHandler.DeleteSale)
			}

			purchases := coop.Group("/purchase-orders")
			{
				purchases.GET("/", salesHandler.GetPurchaseOrders)
				purchases.POST("/", salesHandler.CreatePurchaseOrder)
				purchases.PUT("/:number", salesHandler.UpdatePurchaseOrder)
				purchases.DELETE("/:number", salesHandler.DeletePurchaseOrder)
			}
		}

		farmer := apiV1.Group("/farmer")
		farmer.Use(middleware.Authenticate())
		farmer.Use(middleware.Authorize("farmer", "admin"))
		{
			farmer.GET("/orders", orderHandler.GetOrders)
			farmer.POST("/orders/:id/decision", orderHandler.DecideOrder)
			farmer.POST("/orders/:id/status", orderHandler.AdvanceStatus)

			items := farmer.Group("/items")
			{
				items.GET("/", itemHandler.GetItems)
				items.POST("/", itemHandler.CreateItem)
				items.PUT("/:name", itemHandler.UpdateItem)
				items.DELETE("/:name", itemHandler.DeleteItem)
			}
		}
	}

	return router
}
