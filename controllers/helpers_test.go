package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artvoid/artvoid-api/events"
	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/services"
	"github.com/artvoid/artvoid-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminSub    = "auth0|admin"
	artistSub   = "auth0|meera"
	otherSub    = "auth0|ravi"
	customerSub = "auth0|asha"
)

// testEnv is a router with the auth chain installed, over a fresh database
// holding one user of each role
type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	images *services.MockImageService
	hub    *events.Hub

	users    repository.UserRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	gallery  repository.GalleryRepository
	comments repository.CommentRepository
	messages repository.MessageRepository
	settings repository.SettingsRepository

	admin    models.User
	artist   models.User
	other    models.User
	customer models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	env := &testEnv{
		db:       db,
		images:   services.NewMockImageService(),
		hub:      events.NewHub(nil),
		users:    repository.NewUserRepository(db),
		orders:   repository.NewOrderRepository(db),
		products: repository.NewProductRepository(db),
		gallery:  repository.NewGalleryRepository(db),
		comments: repository.NewCommentRepository(db),
		messages: repository.NewMessageRepository(db),
		settings: repository.NewSettingsRepository(db, 10),
	}

	env.admin = testutil.CreateUser(t, db, adminSub, "Admin", "admin@artvoid.in", models.RoleAdmin)
	env.artist = testutil.CreateUser(t, db, artistSub, "Meera", "meera@artvoid.in", models.RoleEmblos)
	env.other = testutil.CreateUser(t, db, otherSub, "Ravi", "ravi@artvoid.in", models.RoleEmblos)
	env.customer = testutil.CreateUser(t, db, customerSub, "Asha", "asha@example.com", models.RoleCustomer)

	env.router = gin.New()
	env.router.Use(testutil.HeaderAuthMiddleware(), middleware.ResolveActor(env.users))
	return env
}

func (e *testEnv) orderService() *services.OrderService {
	return services.NewOrderService(e.orders, e.products, e.gallery, e.settings, e.users, e.hub, nil)
}

// do sends a JSON request as subject (empty for a guest) and decodes the envelope
func (e *testEnv) do(t *testing.T, method, path, subject string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(t, req, subject)
}

// upload sends a multipart request with fields and a single file part
func (e *testEnv) upload(t *testing.T, method, path, subject string, fields map[string]string, fileField, filename string, content []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.serve(t, req, subject)
}

func (e *testEnv) serve(t *testing.T, req *http.Request, subject string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	if subject != "" {
		req.Header.Set(testutil.AuthHeader, subject)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

// errorCode pulls error.code out of a failure envelope
func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", response["data"])
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "expected list data, got %v", response["data"])
	return data
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
