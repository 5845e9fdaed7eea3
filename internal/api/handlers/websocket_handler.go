package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/socket"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub   *socket.Hub
	Store store.Store
}

// fetchFrame is what a client sends to open or replace a live subscription.
type fetchFrame struct {
	Action     string `json:"action"`
	Collection string `json:"collection"`
	Search     string `json:"search"`
	Status     string `json:"status"`
	Filter     string `json:"filter"`
}

// pushFrame is one live update: the collection's state and current list.
type pushFrame struct {
	Type       string          `json:"type"`
	Collection string          `json:"collection"`
	State      viewmodel.State `json:"state"`
	Data       interface{}     `json:"data"`
}

// wsSession owns everything tied to one connection: the serialized writer
// and the live view models opened by fetch frames, one slot per collection.
type wsSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu    sync.Mutex
	stops map[string]func()
}

func (s *wsSession) send(frame pushFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.WriteMessage(websocket.TextMessage, payload)
}

// open replaces the session's subscription slot for a collection.
func (s *wsSession) open(collection string, stop func()) {
	s.mu.Lock()
	if prev, ok := s.stops[collection]; ok {
		prev()
	}
	s.stops[collection] = stop
	s.mu.Unlock()
}

func (s *wsSession) closeAll() {
	s.mu.Lock()
	for _, stop := range s.stops {
		stop()
	}
	s.stops = map[string]func(){}
	s.mu.Unlock()
}

// ServeWs upgrades the connection, registers it with the hub for targeted
// notifications, and then serves fetch frames until the client goes away.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := auth.ParseJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	user := auth.CurrentUser{UID: claims.UID, Email: claims.Email}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	h.Hub.Register(user.Email, conn)
	session := &wsSession{conn: conn, stops: map[string]func(){}}

	defer func() {
		session.closeAll()
		h.Hub.Unregister(user.Email)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame fetchFrame
		if err := json.Unmarshal(message, &frame); err != nil || frame.Action != "fetch" {
			continue
		}
		h.serveFetch(session, user, claims.Role, frame)
	}
}

// serveFetch opens a live subscription for one collection and streams every
// state change back over the socket until replaced or the socket closes.
func (h *WebSocketHandler) serveFetch(session *wsSession, user auth.CurrentUser, role string, frame fetchFrame) {
	switch frame.Collection {
	case "orders":
		vm := viewmodel.NewOrderViewModel(h.Store, user)
		filter := viewmodel.OrderFilter{Keywords: frame.Search, Statuses: frame.Status}
		if role == "client" {
			filter.ClientUID = user.UID
		}
		vm.FetchOrders(filter)
		session.open(frame.Collection, streamList(session, frame.Collection, vm.State, vm.Data, vm.Close))
	case "products":
		vm := viewmodel.NewProductViewModel(h.Store)
		vm.FetchProducts(viewmodel.ProductFilter{Keywords: frame.Search, InStoreOnly: role == "client"})
		session.open(frame.Collection, streamList(session, frame.Collection, vm.State, vm.Data, vm.Close))
	case "items":
		vm := viewmodel.NewItemViewModel(h.Store, user)
		vm.FetchItems(frame.Search, false)
		session.open(frame.Collection, streamList(session, frame.Collection, vm.State, vm.Data, vm.Close))
	case "vendors":
		vm := viewmodel.NewVendorViewModel(h.Store)
		vm.FetchVendors(frame.Filter, frame.Search, "")
		session.open(frame.Collection, streamList(session, frame.Collection, vm.State, vm.Data, vm.Close))
	case "facilities":
		vm := viewmodel.NewFacilityViewModel(h.Store)
		vm.FetchFacilities(frame.Search, "")
		session.open(frame.Collection, streamList(session, frame.Collection, vm.State, vm.Data, vm.Close))
	case "transactions":
		vm := viewmodel.NewTransactionViewModel(h.Store)
		vm.FetchTransactions(frame.Search)
		session.open(frame.Collection, streamList(session, frame.Collection, vm.State, vm.Data, vm.Close))
	default:
		session.send(pushFrame{Type: "ERROR", Collection: frame.Collection, State: viewmodel.StateError("unknown collection")})
	}
}

// streamList wires a view model's (state, data) pair to the socket and
// returns the teardown for the session's subscription slot. State changes
// drive the pushes so loading/empty/error frames arrive in order with data.
func streamList[T any](session *wsSession, collection string, state *viewmodel.Live[viewmodel.State], data *viewmodel.Live[[]T], closeVM func()) func() {
	removeState := state.Observe(func(s viewmodel.State) {
		session.send(pushFrame{
			Type:       "COLLECTION_UPDATE",
			Collection: collection,
			State:      s,
			Data:       data.Get(),
		})
	})
	return func() {
		removeState()
		closeVM()
	}
}
