package server_test

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/appleboy/gofight/v2"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/server"
	"github.com/stretchr/testify/assert"
)

func TestRequestHome(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestVersion(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/version").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestUnauthenticated(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/items").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})

	r.GET("/items").SetHeader(gofight.H{"Authorization": "Bearer not-a-token"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, r.Code)
		})
}

func setup() (engine *echo.Echo, ctrl server.Controller, r *gofight.RequestConfig, cleanup func()) {
	tmpfile, err := os.CreateTemp("", "clipvault.*.db")
	if err != nil {
		panic(err)
	}
	filename := tmpfile.Name()
	tmpfile.Close()

	db, err := database.StormOpen(filename)
	if err != nil {
		panic(err)
	}

	ctrl = server.Controller{
		Version:            "test",
		Database:           db,
		IdentitySigningKey: []byte("secret"),
	}
	engine = server.EchoEngine(ctrl)

	return engine, ctrl, gofight.New(), func() {
		db.Close()
		os.RemoveAll(filename)
	}
}

// authorization forges an identity-provider token the way the external
// provider would: HS256, `sub` carrying the stable external id.
func authorization(ctrl server.Controller, externalID, email string) gofight.H {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   externalID,
		"email": email,
	})
	raw, err := token.SignedString(ctrl.IdentitySigningKey)
	if err != nil {
		panic(err)
	}
	return gofight.H{"Authorization": "Bearer " + raw}
}

func createUser(ctrl server.Controller, externalID, email string) *model.User {
	user := &model.User{
		ExternalID: externalID,
		Email:      email,
	}
	if err := ctrl.Database.Save(user); err != nil {
		panic(err)
	}
	return user
}

func parse(body string) map[string]interface{} {
	payload := map[string]interface{}{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		panic(err)
	}
	return payload
}
