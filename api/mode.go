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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/geopredict/relay/api/model"
	"github.com/geopredict/relay/model"
)

// GetTrackingMode returns the active tracking mode.
func (a Api) GetTrackingMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": a.relay.Store().TrackingMode(c.Request.Context())})
}

// UpdateTrackingMode switches between privacy and reliability tracking. The
// new mode applies from the next resolution attempt.
func (a Api) UpdateTrackingMode(c *gin.Context) {
	var req model2.UpdateTrackingMode
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := req.ValidateUpdateTrackingMode(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	a.relay.Store().SetTrackingMode(c.Request.Context(), model.ParseTrackingMode(req.Mode))
	c.JSON(http.StatusOK, gin.H{"mode": a.relay.Store().TrackingMode(c.Request.Context())})
}
