package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/infrastructure/memory"
	"github.com/oksasatya/buytoro/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type apiEnv struct {
	t        *testing.T
	engine   *gin.Engine
	users    *memory.UserRepository
	products *memory.ProductRepository
	orders   *memory.OrderRepository
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	cfg := &config.Config{
		AppName:             "buytoro",
		CORSAllowedOrigins:  "http://localhost:3000",
		DebugMetricsEnabled: true,
		ProductCacheTTL:     time.Minute,
	}
	logger := helpers.NewDiscardLogger()
	e := &apiEnv{
		t:        t,
		users:    memory.NewUserRepository(),
		products: memory.NewProductRepository(),
	}
	e.orders = memory.NewOrderRepository(e.users)
	jwt := &helpers.JWTManager{Secret: []byte("router-secret"), TTL: time.Hour}

	d := NewServices(e.users, e.products, e.orders, jwt, Infra{KV: memory.NewKV()}, cfg, logger)
	e.engine = NewEngine(cfg, logger)
	reg := NewRegistry(e.engine, logger)
	InitModules(reg, d)
	reg.RegisterAll()
	return e
}

func (e *apiEnv) do(method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (e *apiEnv) data(env envelope, dest any) {
	e.t.Helper()
	require.NoError(e.t, json.Unmarshal(env.Data, dest))
}

// register returns the new user's id and token.
func (e *apiEnv) register(name, email, password string) (string, string) {
	e.t.Helper()
	w, env := e.do(http.MethodPost, "/api/users/register", "", map[string]string{"name": name, "email": email, "password": password})
	require.Equal(e.t, http.StatusCreated, w.Code, env.Message)
	var out struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	e.data(env, &out)
	return out.ID, out.Token
}

func (e *apiEnv) adminToken() string {
	e.t.Helper()
	hash, err := helpers.HashPassword("adminpass1")
	require.NoError(e.t, err)
	require.NoError(e.t, e.users.Create(context.Background(), &entity.User{Name: "Admin", Email: "admin@x.com", Password: hash, IsAdmin: true}))
	w, env := e.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "admin@x.com", "password": "adminpass1"})
	require.Equal(e.t, http.StatusOK, w.Code)
	var out struct {
		Token   string `json:"token"`
		IsAdmin bool   `json:"isAdmin"`
	}
	e.data(env, &out)
	require.True(e.t, out.IsAdmin)
	return out.Token
}

func (e *apiEnv) product(name string, price float64, stock int) *entity.Product {
	e.t.Helper()
	p := &entity.Product{Name: name, Brand: "Seiko", Category: "Diver", Price: price, CountInStock: stock, Images: []string{"https://img.test/" + name}}
	require.NoError(e.t, e.products.Create(context.Background(), p))
	return p
}

type orderView struct {
	ID            string     `json:"id"`
	ItemsPrice    float64    `json:"itemsPrice"`
	ShippingPrice float64    `json:"shippingPrice"`
	TaxPrice      float64    `json:"taxPrice"`
	TotalPrice    float64    `json:"totalPrice"`
	IsPaid        bool       `json:"isPaid"`
	IsDelivered   bool       `json:"isDelivered"`
	IsCancelled   bool       `json:"isCancelled"`
	CancelledAt   *time.Time `json:"cancelledAt"`
	OrderItems    []struct {
		Product string  `json:"product"`
		Qty     int     `json:"qty"`
		Price   float64 `json:"price"`
	} `json:"orderItems"`
	User *struct {
		Email string `json:"email"`
	} `json:"user"`
}

func orderBody(productID string, qty int) map[string]any {
	return map[string]any{
		"orderItems":      []map[string]any{{"product": productID, "name": "Diver", "qty": qty, "price": 500}},
		"shippingAddress": map[string]string{"address": "1 Main St", "city": "Lahore", "postalCode": "54000", "country": "PK"},
		"paymentMethod":   "COD",
		"itemsPrice":      1000,
		"shippingPrice":   100,
		"taxPrice":        20,
		"totalPrice":      1120,
	}
}

func TestScenarioA_RegisterAndLogin(t *testing.T) {
	api := newAPI(t)
	_, token := api.register("Alice", "a@x.com", "pw123456")
	assert.NotEmpty(t, token)

	w, env := api.do(http.MethodPost, "/api/users/register", "", map[string]string{"name": "Again", "email": "A@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user already exists", env.Message)
	all, err := api.users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	w, env = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "a@x.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", env.Message)

	w, env = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "a@x.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	api.data(env, &login)
	assert.Equal(t, "a@x.com", login.Email)

	w, env = api.do(http.MethodGet, "/api/users/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]any
	api.data(env, &profile)
	assert.Equal(t, "Alice", profile["name"])
	assert.NotContains(t, profile, "password")
}

func TestRegisterValidation(t *testing.T) {
	api := newAPI(t)
	w, env := api.do(http.MethodPost, "/api/users/register", "", map[string]string{"name": "Bob", "email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", env.Message)
}

func TestBlockedUserIsRejected(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	id, token := api.register("Bob", "bob@x.com", "pw123456")

	w, _ := api.do(http.MethodPut, "/api/users/"+id+"/block", admin, map[string]bool{"blocked": true})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := api.do(http.MethodGet, "/api/users/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "account is blocked", env.Message)

	w, env = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "bob@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "account is blocked", env.Message)
}

func TestScenarioB_CreateOrder(t *testing.T) {
	api := newAPI(t)
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	w, env := api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var o orderView
	api.data(env, &o)
	assert.Equal(t, 1000.0, o.ItemsPrice)
	assert.Equal(t, 100.0, o.ShippingPrice)
	assert.Equal(t, 20.0, o.TaxPrice)
	assert.Equal(t, 1120.0, o.TotalPrice)
	assert.False(t, o.IsPaid)
	assert.False(t, o.IsDelivered)
	assert.False(t, o.IsCancelled)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, p.ID, o.OrderItems[0].Product)

	w, env = api.do(http.MethodGet, "/api/orders/myorders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []orderView
	api.data(env, &mine)
	assert.Len(t, mine, 1)
}

func TestCreateOrderRejections(t *testing.T) {
	api := newAPI(t)
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 1)

	body := orderBody(p.ID, 1)
	body["orderItems"] = []map[string]any{}
	w, env := api.do(http.MethodPost, "/api/orders", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no order items", env.Message)

	w, _ = api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 2))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/api/orders", token, orderBody("missing", 1))
	assert.Equal(t, http.StatusNotFound, w.Code)

	body = orderBody(p.ID, 1)
	body["paymentMethod"] = "BITCOIN"
	w, env = api.do(http.MethodPost, "/api/orders", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", env.Message)

	w, env = api.do(http.MethodPost, "/api/orders", "", orderBody(p.ID, 1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized, no token", env.Message)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	api := newAPI(t)
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	w, env := api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 1), "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code)
	var first orderView
	api.data(env, &first)

	w, env = api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 1), "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusOK, w.Code)
	var again orderView
	api.data(env, &again)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, true, env.Meta["replayed"])

	all, err := api.orders.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestScenarioC_CancelThenDeliver(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	_, env := api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 1))
	var o orderView
	api.data(env, &o)

	w, env := api.do(http.MethodPut, "/api/orders/"+o.ID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var cancelled orderView
	api.data(env, &cancelled)
	assert.True(t, cancelled.IsCancelled)
	assert.NotNil(t, cancelled.CancelledAt)

	w, env = api.do(http.MethodPut, "/api/orders/"+o.ID+"/deliver", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot deliver a cancelled order", env.Message)

	w, env = api.do(http.MethodPut, "/api/orders/"+o.ID+"/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order already cancelled", env.Message)
}

func TestOrderAccessRules(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	_, owner := api.register("Alice", "a@x.com", "pw123456")
	_, stranger := api.register("Eve", "eve@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	_, env := api.do(http.MethodPost, "/api/orders", owner, orderBody(p.ID, 1))
	var o orderView
	api.data(env, &o)
	path := "/api/orders/" + o.ID

	w, _ := api.do(http.MethodGet, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodPut, path+"/cancel", stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not authorized to cancel this order", env.Message)

	w, env = api.do(http.MethodPut, path+"/pay", owner, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized as admin", env.Message)

	w, _ = api.do(http.MethodGet, "/api/orders", owner, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = api.do(http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var viewed orderView
	api.data(env, &viewed)
	require.NotNil(t, viewed.User)
	assert.Equal(t, "a@x.com", viewed.User.Email)

	w, _ = api.do(http.MethodPut, path+"/pay", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = api.do(http.MethodPut, path+"/cancel", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot cancel a paid order", env.Message)
	w, env = api.do(http.MethodPut, path+"/pay", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order already paid", env.Message)

	w, _ = api.do(http.MethodPut, path+"/deliver", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = api.do(http.MethodPut, path+"/cancel", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot cancel a delivered order", env.Message)

	w, _ = api.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenarioD_ProductAdminRoutes(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	_, customer := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	w, env := api.do(http.MethodDelete, "/api/products/"+p.ID, customer, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized as admin", env.Message)

	w, env = api.do(http.MethodDelete, "/api/products/"+p.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized, no token", env.Message)

	w, env = api.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Chrono", "brand": "Citizen", "category": "Sport", "price": 1500, "countInStock": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "at least one product image is required", env.Message)

	w, env = api.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Chrono", "brand": "Citizen", "category": "Sport", "price": 1500, "countInStock": 3,
		"imageUrls": []string{"https://img.test/chrono.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var created struct {
		ID     string   `json:"id"`
		Images []string `json:"images"`
		Status string   `json:"status"`
	}
	api.data(env, &created)
	assert.Equal(t, []string{"https://img.test/chrono.jpg"}, created.Images)
	assert.Equal(t, "In Stock", created.Status)

	w, env = api.do(http.MethodPut, "/api/products/"+created.ID, admin, map[string]any{"countInStock": 0})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var updated struct {
		Name         string `json:"name"`
		CountInStock int    `json:"countInStock"`
		Status       string `json:"status"`
	}
	api.data(env, &updated)
	assert.Equal(t, "Chrono", updated.Name)
	assert.Equal(t, 0, updated.CountInStock)
	assert.Equal(t, "Out of Stock", updated.Status)

	w, _ = api.do(http.MethodDelete, "/api/products/"+p.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = api.do(http.MethodGet, "/api/products/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", env.Message)
}

func TestProductListing(t *testing.T) {
	api := newAPI(t)
	api.product("Diver", 500, 5)
	api.product("Field", 300, 2)
	p := &entity.Product{Name: "Chrono", Brand: "Citizen", Category: "Sport", Price: 900, CountInStock: 1, Images: []string{"x"}}
	require.NoError(t, api.products.Create(context.Background(), p))

	w, env := api.do(http.MethodGet, "/api/products?brand=seiko&pageSize=1&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
		Page  int `json:"page"`
		Pages int `json:"pages"`
		Total int `json:"total"`
	}
	api.data(env, &page)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Products, 1)

	w, env = api.do(http.MethodGet, "/api/products/brands", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var brands []string
	api.data(env, &brands)
	assert.ElementsMatch(t, []string{"Seiko", "Citizen"}, brands)
}

func TestWishlistRoutes(t *testing.T) {
	api := newAPI(t)
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	w, env := api.do(http.MethodPost, "/api/users/wishlist/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var ids []string
	api.data(env, &ids)
	assert.Equal(t, []string{p.ID}, ids)

	w, env = api.do(http.MethodGet, "/api/users/wishlist", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []map[string]any
	api.data(env, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Diver", products[0]["name"])

	w, _ = api.do(http.MethodPost, "/api/users/wishlist/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRouteAndDebugVars(t *testing.T) {
	api := newAPI(t)
	w, env := api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "not found - /api/nope", env.Message)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var vars map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vars))
	assert.Contains(t, vars, "orders_created")
	assert.Contains(t, vars, "orders_cancelled")
}

func TestDeleteProfileKeepsOrders(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	w, env := api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var o orderView
	api.data(env, &o)
	w, _ = api.do(http.MethodPut, "/api/orders/"+o.ID+"/deliver", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodDelete, "/api/users/profile", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "account has orders and cannot be deleted", env.Message)

	w, env = api.do(http.MethodGet, "/api/orders/"+o.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.data(env, &o)
	assert.True(t, o.IsDelivered)
	w, _ = api.do(http.MethodGet, "/api/users/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Without orders the owner may leave.
	_, other := api.register("Bob", "bob@x.com", "pw123456")
	w, _ = api.do(http.MethodDelete, "/api/users/profile", other, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReindexRoute(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	_, customer := api.register("Alice", "a@x.com", "pw123456")
	api.product("Diver", 500, 5)

	w, env := api.do(http.MethodPost, "/api/products/reindex", customer, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized as admin", env.Message)

	// No search backend in this engine, so nothing is pushed.
	w, env = api.do(http.MethodPost, "/api/products/reindex", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "search index rebuilt", env.Message)
	var out struct {
		Indexed int `json:"indexed"`
	}
	api.data(env, &out)
	assert.Equal(t, 0, out.Indexed)
}

func TestOrderDetailExpandsLineItems(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken()
	_, token := api.register("Alice", "a@x.com", "pw123456")
	p := api.product("Diver", 500, 5)

	w, env := api.do(http.MethodPost, "/api/orders", token, orderBody(p.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var o orderView
	api.data(env, &o)

	w, env = api.do(http.MethodPut, "/api/products/"+p.ID, admin, map[string]any{"name": "Diver Mk II", "price": 900})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = api.do(http.MethodGet, "/api/orders/"+o.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var detail struct {
		OrderItems []struct {
			Product string  `json:"product"`
			Name    string  `json:"name"`
			Price   float64 `json:"price"`
			Current *struct {
				Name         string  `json:"name"`
				Price        float64 `json:"price"`
				CountInStock int     `json:"countInStock"`
			} `json:"current"`
		} `json:"orderItems"`
		User *struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	api.data(env, &detail)
	require.Len(t, detail.OrderItems, 1)
	line := detail.OrderItems[0]
	assert.Equal(t, p.ID, line.Product)
	assert.Equal(t, "Diver", line.Name)
	assert.Equal(t, 500.0, line.Price)
	require.NotNil(t, line.Current)
	assert.Equal(t, "Diver Mk II", line.Current.Name)
	assert.Equal(t, 900.0, line.Current.Price)
	require.NotNil(t, detail.User)
	assert.Equal(t, "a@x.com", detail.User.Email)

	w, _ = api.do(http.MethodDelete, "/api/products/"+p.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = api.do(http.MethodGet, "/api/orders/"+o.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.data(env, &detail)
	assert.Nil(t, detail.OrderItems[0].Current)
	assert.Equal(t, "Diver", detail.OrderItems[0].Name)
}
