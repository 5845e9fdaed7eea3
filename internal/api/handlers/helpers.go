package handlers

import (
	"errors"
	"net/http"
	"time"

	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

// fetchTimeout bounds how long a request handler waits for a view model to
// leave its loading state.
const fetchTimeout = 5 * time.Second

var errFetchTimeout = errors.New("timed out waiting for data")

// collectList observes the view model state until it settles on a terminal
// kind, then returns the published list alongside that state. The caller
// must have started a fetch beforehand.
func collectList[T any](state *viewmodel.Live[viewmodel.State], data *viewmodel.Live[[]T]) ([]T, viewmodel.State, error) {
	settled := make(chan viewmodel.State, 1)
	remove := state.Observe(func(s viewmodel.State) {
		if s.Kind == viewmodel.KindLoading {
			return
		}
		select {
		case settled <- s:
		default:
		}
	})
	defer remove()

	select {
	case s := <-settled:
		return data.Get(), s, nil
	case <-time.After(fetchTimeout):
		return nil, viewmodel.State{}, errFetchTimeout
	}
}

// respondList translates a settled (list, state) pair into an HTTP response.
// An empty result is a 200 with an empty array, matching list endpoints
// everywhere else in the API.
func respondList[T any](c *gin.Context, list []T, state viewmodel.State, err error) {
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if state.Kind == viewmodel.KindError {
		c.JSON(http.StatusInternalServerError, gin.H{"error": state.Message})
		return
	}
	if list == nil {
		list = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "data": list})
}
