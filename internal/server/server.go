package server

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/server/middlewares"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// A Controller is an Inversion Of Control pattern used to init the server package.
type Controller struct {
	Version  string
	Database database.Client
	// Identity boundary params
	IdentitySigningKey []byte
}

// EchoEngine instantiates the web server.
func EchoEngine(ctrl Controller) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler

	////////////
	// Router //
	////////////

	router := engine.Group("")
	restricted := router.Group("")
	restricted.Use(middlewares.CurrentUser(service.NewUser(ctrl.Database), ctrl.IdentitySigningKey))

	//
	// generic handlers
	//
	version := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	}
	router.GET("/", version)
	router.GET("/version", version)

	//
	// public read surface (no identity)
	//
	share := &share{
		items: service.NewItem(ctrl.Database),
	}
	router.GET("/share/:token", share.Show)
	router.GET("/share/:token/image", share.DownloadImage)

	qr := &qr{
		qrtokens: service.NewQR(ctrl.Database),
	}
	router.GET("/qr/:token", qr.Show)
	restricted.POST("/qr", qr.Generate)

	//
	// item handlers
	//
	item := &item{
		items: service.NewItem(ctrl.Database),
	}
	restricted.POST("/items", item.Create)
	restricted.GET("/items", item.List)
	restricted.GET("/items/:id", item.Show)
	restricted.GET("/items/:id/image", item.DownloadImage)
	restricted.PUT("/items/:id", item.Update)
	restricted.DELETE("/items/:id", item.Delete)
	restricted.POST("/items/:id/share", item.Share)
	restricted.DELETE("/items/:id/share", item.Unshare)

	//
	// collection handlers
	//
	collection := &collection{
		collections: service.NewCollection(ctrl.Database),
	}
	restricted.POST("/collections", collection.Create)
	restricted.GET("/collections", collection.List)
	restricted.POST("/collections/:id/members", collection.Invite)
	restricted.DELETE("/collections/:id/members/:user_id", collection.RemoveMember)
	restricted.POST("/collections/:id/items", collection.AddItem)
	restricted.GET("/collections/:id/items", collection.ListItems)

	return engine
}

// currentUser returns the user stored in context by the identity middleware.
func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// PrintRoutes prints the Echo engine exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%7s %s\n", route.Method, route.Path)
	}
}
