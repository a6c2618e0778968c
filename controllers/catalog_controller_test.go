package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	cc := NewCatalogController(env.products, env.gallery, env.comments, env.images, nil)

	products := env.router.Group("/products")
	products.GET("", cc.ListProducts)
	products.POST("", middleware.RequireRole(models.RoleAdmin), cc.CreateProduct)
	products.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), cc.DeleteProduct)
	products.PUT("/:id/like", cc.LikeProduct)
	products.GET("/:id/comments", cc.ListProductComments)
	products.POST("/:id/comments", cc.CreateProductComment)

	gallery := env.router.Group("/gallery")
	gallery.GET("", cc.ListGallery)
	gallery.POST("", middleware.RequireRole(models.RoleAdmin, models.RoleEmblos), cc.CreateGalleryItem)
	gallery.DELETE("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleEmblos), cc.DeleteGalleryItem)
	gallery.PUT("/:id/like", cc.LikeGalleryItem)
	gallery.GET("/:id/comments", cc.ListGalleryComments)
	gallery.POST("/:id/comments", cc.CreateGalleryComment)
	return env
}

func TestCreateProduct(t *testing.T) {
	env := newCatalogEnv(t)

	tests := []struct {
		name           string
		subject        string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{"Admin creates product", adminSub, map[string]interface{}{"name": "Lotus Print", "price": 1200, "image_key": "https://cdn.example.com/lotus.png"}, http.StatusCreated, ""},
		{"Artist cannot create product", artistSub, map[string]interface{}{"name": "Lotus Print", "price": 1200}, http.StatusForbidden, "FORBIDDEN"},
		{"Guest cannot create product", "", map[string]interface{}{"name": "Lotus Print", "price": 1200}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"Missing name", adminSub, map[string]interface{}{"price": 1200}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"Non-positive price", adminSub, map[string]interface{}{"name": "Free", "price": 0}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, http.MethodPost, "/products", tt.subject, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(response))
		})
	}

	w, response := env.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := dataList(t, response)
	require.Len(t, products, 1)
	product := products[0].(map[string]interface{})
	assert.Equal(t, "Lotus Print", product["name"])
	assert.Equal(t, "https://cdn.example.com/lotus.png", product["image_url"])
}

func TestCreateProductMultipart(t *testing.T) {
	env := newCatalogEnv(t)

	fields := map[string]string{"name": "Koi Pond", "price": "800"}
	w, response := env.upload(t, http.MethodPost, "/products", adminSub, fields, "image", "koi.png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataMap(t, response)
	assert.Equal(t, "uploads/mock_koi.png", data["image_key"])
	assert.True(t, env.images.ImageExists("uploads/mock_koi.png"))

	// videos are not product images
	w, response = env.upload(t, http.MethodPost, "/products", adminSub, fields, "image", "koi.mp4", pngBytes)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE_FORMAT", errorCode(response))

	id := uint(data["id"].(float64))
	w, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", id), adminSub, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.images.ImageExists("uploads/mock_koi.png"))

	w, response = env.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", id), adminSub, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(response))
}

func TestLikeProduct(t *testing.T) {
	env := newCatalogEnv(t)
	product := createProduct(t, env, nil, 500)
	path := fmt.Sprintf("/products/%d/like", product.ID)

	steps := []struct {
		action        string
		expectedLikes float64
	}{
		{"like", 1},
		{"like", 2},
		{"unlike", 1},
		{"unlike", 0},
		{"unlike", 0},
	}
	for _, step := range steps {
		w, response := env.do(t, http.MethodPut, path, "", map[string]interface{}{"action": step.action})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, step.expectedLikes, dataMap(t, response)["likes"])
	}

	w, response := env.do(t, http.MethodPut, path, "", map[string]interface{}{"action": "love"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))

	w, _ = env.do(t, http.MethodPut, "/products/9999/like", "", map[string]interface{}{"action": "like"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductComments(t *testing.T) {
	env := newCatalogEnv(t)
	product := createProduct(t, env, nil, 500)
	path := fmt.Sprintf("/products/%d/comments", product.ID)

	tests := []struct {
		name           string
		subject        string
		body           map[string]interface{}
		expectedStatus int
		expectedName   string
	}{
		{"Guest comments with a name", "", map[string]interface{}{"name": "Visitor", "text": "Lovely colours"}, http.StatusCreated, "Visitor"},
		{"Signed-in user defaults to profile name", customerSub, map[string]interface{}{"text": "Ordered one!"}, http.StatusCreated, "Asha"},
		{"Guest without a name", "", map[string]interface{}{"text": "Anonymous"}, http.StatusBadRequest, ""},
		{"Missing text", "", map[string]interface{}{"name": "Visitor"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, http.MethodPost, path, tt.subject, tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedName != "" {
				assert.Equal(t, tt.expectedName, dataMap(t, response)["name"])
			}
		})
	}

	w, response := env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, response), 2)

	w, _ = env.do(t, http.MethodPost, "/products/9999/comments", "", map[string]interface{}{"name": "V", "text": "t"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// comments are scoped to their item type
	w, response = env.do(t, http.MethodGet, fmt.Sprintf("/gallery/%d/comments", product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, response))
}

func TestCreateGalleryItem(t *testing.T) {
	env := newCatalogEnv(t)

	w, response := env.do(t, http.MethodPost, "/gallery", artistSub, map[string]interface{}{
		"title":      "Monsoon",
		"creator_id": env.other.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataMap(t, response)
	assert.Equal(t, float64(env.artist.ID), data["creator_id"], "artists always post as themselves")
	assert.Equal(t, models.MediaImage, data["media_type"])

	w, response = env.do(t, http.MethodPost, "/gallery", adminSub, map[string]interface{}{
		"title":      "Credited",
		"creator_id": env.other.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(env.other.ID), dataMap(t, response)["creator_id"])

	w, response = env.upload(t, http.MethodPost, "/gallery", artistSub, map[string]string{"title": "Process reel"}, "image", "reel.mp4", []byte("video"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.MediaVideo, dataMap(t, response)["media_type"])

	w, _ = env.do(t, http.MethodPost, "/gallery", customerSub, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, response = env.do(t, http.MethodGet, "/gallery", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, response), 3)
}

func TestDeleteGalleryItem(t *testing.T) {
	env := newCatalogEnv(t)

	mine := models.GalleryItem{Title: "Mine", MediaType: models.MediaImage, CreatorID: &env.artist.ID}
	theirs := models.GalleryItem{Title: "Theirs", MediaType: models.MediaImage, CreatorID: &env.other.ID}
	require.NoError(t, env.db.Create(&mine).Error)
	require.NoError(t, env.db.Create(&theirs).Error)

	tests := []struct {
		name           string
		subject        string
		id             uint
		expectedStatus int
	}{
		{"Artist cannot delete another artist's item", artistSub, theirs.ID, http.StatusForbidden},
		{"Artist deletes own item", artistSub, mine.ID, http.StatusOK},
		{"Customer cannot delete", customerSub, theirs.ID, http.StatusForbidden},
		{"Admin deletes any item", adminSub, theirs.ID, http.StatusOK},
		{"Already deleted", adminSub, theirs.ID, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/gallery/%d", tt.id), tt.subject, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}
