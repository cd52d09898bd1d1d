/*
Copyright 2025 GeoPredict Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/geopredict/relay/config"
)

func setupAuthRouter(secretKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.MockConfig(&config.Configuration{
		Server: config.ServerConfig{Secure: true, SecretKey: secretKey},
	})
	router := gin.New()
	router.Use(SecretKeyAuthMiddleware())
	router.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, "ok") })
	router.GET("/transactions", func(c *gin.Context) { c.JSON(http.StatusOK, "ok") })
	return router
}

func TestSecretKeyAuthMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		secretKey    string
		clientKey    string
		route        string
		expectedCode int
	}{
		{
			name:         "root path skips auth",
			secretKey:    "secret",
			route:        "/",
			expectedCode: http.StatusOK,
		},
		{
			name:         "missing key",
			secretKey:    "secret",
			route:        "/transactions",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "wrong key",
			secretKey:    "secret",
			clientKey:    "wrong",
			route:        "/transactions",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid key",
			secretKey:    "secret",
			clientKey:    "secret",
			route:        "/transactions",
			expectedCode: http.StatusOK,
		},
		{
			name:         "secret key not configured",
			secretKey:    "",
			clientKey:    "anything",
			route:        "/transactions",
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthRouter(tt.secretKey)
			req := httptest.NewRequest("GET", tt.route, nil)
			if tt.clientKey != "" {
				req.Header.Set(KeyHeader, tt.clientKey)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}
