package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/services"
	"github.com/artvoid/artvoid-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name        string  `json:"name" form:"name" binding:"required,max=200"`
	Description string  `json:"description" form:"description" binding:"max=5000"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	ImageKey    *string `json:"image_key" form:"image_key"`
	CreatorID   *uint   `json:"creator_id" form:"creator_id"`
}

// CreateGalleryItemRequest represents the request body for creating a gallery item
type CreateGalleryItemRequest struct {
	Title       string  `json:"title" form:"title" binding:"required,max=200"`
	Description string  `json:"description" form:"description" binding:"max=5000"`
	ImageKey    *string `json:"image_key" form:"image_key"`
	MediaType   string  `json:"media_type" form:"media_type" binding:"omitempty,oneof=image video"`
	CreatorID   *uint   `json:"creator_id" form:"creator_id"`
}

// LikeRequest represents the request body for liking or unliking an item
type LikeRequest struct {
	Action string `json:"action" binding:"required,oneof=like unlike"`
}

// CommentRequest represents the request body for commenting on an item.
// Name may be omitted by signed-in users.
type CommentRequest struct {
	Name string `json:"name" binding:"max=100"`
	Text string `json:"text" binding:"required,max=2000"`
}

// CatalogController serves shop products and gallery items with their
// likes and comments
type CatalogController struct {
	products repository.ProductRepository
	gallery  repository.GalleryRepository
	comments repository.CommentRepository
	images   services.ImageService
	logger   *zap.Logger
}

// NewCatalogController creates a catalog controller
func NewCatalogController(
	products repository.ProductRepository,
	gallery repository.GalleryRepository,
	comments repository.CommentRepository,
	images services.ImageService,
	logger *zap.Logger,
) *CatalogController {
	return &CatalogController{
		products: products,
		gallery:  gallery,
		comments: comments,
		images:   images,
		logger:   orNop(logger),
	}
}

// ListProducts handles GET /api/v1/products - newest first
func (cc *CatalogController) ListProducts(c *gin.Context) {
	products, err := cc.products.List(c.Request.Context())
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	for i := range products {
		products[i].ImageURL = services.ResolveImageURL(c.Request.Context(), cc.images, products[i].ImageKey)
	}
	respondOK(c, http.StatusOK, products)
}

// CreateProduct handles POST /api/v1/products (admin only)
func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}

	key, ok := cc.uploadIfPresent(c, false)
	if !ok {
		return
	}
	if key != nil {
		req.ImageKey = key
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		ImageKey:    req.ImageKey,
		CreatorID:   req.CreatorID,
	}
	if err := cc.products.Create(c.Request.Context(), product); err != nil {
		respondError(c, cc.logger, err)
		return
	}

	product.ImageURL = services.ResolveImageURL(c.Request.Context(), cc.images, product.ImageKey)
	respondOK(c, http.StatusCreated, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin only)
func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := cc.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	if err := cc.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, cc.logger, err)
		return
	}
	cc.deleteImage(c.Request.Context(), product.ImageKey)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted",
	})
}

// LikeProduct handles PUT /api/v1/products/:id/like
func (cc *CatalogController) LikeProduct(c *gin.Context) {
	cc.like(c, cc.products.AdjustLikes)
}

// ListProductComments handles GET /api/v1/products/:id/comments
func (cc *CatalogController) ListProductComments(c *gin.Context) {
	cc.listComments(c, models.ItemTypeProduct)
}

// CreateProductComment handles POST /api/v1/products/:id/comments
func (cc *CatalogController) CreateProductComment(c *gin.Context) {
	cc.createComment(c, models.ItemTypeProduct, func(ctx context.Context, id uint) error {
		_, err := cc.products.Get(ctx, id)
		return err
	})
}

// ListGallery handles GET /api/v1/gallery - newest first
func (cc *CatalogController) ListGallery(c *gin.Context) {
	items, err := cc.gallery.List(c.Request.Context())
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	for i := range items {
		items[i].ImageURL = services.ResolveImageURL(c.Request.Context(), cc.images, items[i].ImageKey)
	}
	respondOK(c, http.StatusOK, items)
}

// CreateGalleryItem handles POST /api/v1/gallery (admin or emblos). Artists
// always post as themselves; admins may credit another creator.
func (cc *CatalogController) CreateGalleryItem(c *gin.Context) {
	var req CreateGalleryItemRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}

	key, ok := cc.uploadIfPresent(c, true)
	if !ok {
		return
	}
	if key != nil {
		req.ImageKey = key
		if req.MediaType == "" && utils.IsVideo(*key) {
			req.MediaType = models.MediaVideo
		}
	}
	if req.MediaType == "" {
		req.MediaType = models.MediaImage
	}

	actor := middleware.GetActor(c)
	creatorID := req.CreatorID
	if !actor.IsAdmin() || creatorID == nil {
		creatorID = &actor.UserID
	}

	item := &models.GalleryItem{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ImageKey:    req.ImageKey,
		MediaType:   req.MediaType,
		CreatorID:   creatorID,
	}
	if err := cc.gallery.Create(c.Request.Context(), item); err != nil {
		respondError(c, cc.logger, err)
		return
	}

	item.ImageURL = services.ResolveImageURL(c.Request.Context(), cc.images, item.ImageKey)
	respondOK(c, http.StatusCreated, item)
}

// DeleteGalleryItem handles DELETE /api/v1/gallery/:id - admins, or the
// artist who posted it
func (cc *CatalogController) DeleteGalleryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := cc.gallery.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}

	actor := middleware.GetActor(c)
	if !actor.IsAdmin() && (item.CreatorID == nil || *item.CreatorID != actor.UserID) {
		respondFailure(c, http.StatusForbidden, "FORBIDDEN", "You can only delete your own gallery items")
		return
	}

	if err := cc.gallery.Delete(c.Request.Context(), id); err != nil {
		respondError(c, cc.logger, err)
		return
	}
	cc.deleteImage(c.Request.Context(), item.ImageKey)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gallery item deleted",
	})
}

// LikeGalleryItem handles PUT /api/v1/gallery/:id/like
func (cc *CatalogController) LikeGalleryItem(c *gin.Context) {
	cc.like(c, cc.gallery.AdjustLikes)
}

// ListGalleryComments handles GET /api/v1/gallery/:id/comments
func (cc *CatalogController) ListGalleryComments(c *gin.Context) {
	cc.listComments(c, models.ItemTypeGallery)
}

// CreateGalleryComment handles POST /api/v1/gallery/:id/comments
func (cc *CatalogController) CreateGalleryComment(c *gin.Context) {
	cc.createComment(c, models.ItemTypeGallery, func(ctx context.Context, id uint) error {
		_, err := cc.gallery.Get(ctx, id)
		return err
	})
}

func (cc *CatalogController) like(c *gin.Context, adjust func(ctx context.Context, id uint, delta int) (int, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	delta := 1
	if req.Action == "unlike" {
		delta = -1
	}

	likes, err := adjust(c.Request.Context(), id, delta)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id, "likes": likes})
}

func (cc *CatalogController) listComments(c *gin.Context, itemType string) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := cc.comments.ListForItem(c.Request.Context(), itemType, id)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, comments)
}

func (cc *CatalogController) createComment(c *gin.Context, itemType string, exists func(context.Context, uint) error) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := exists(c.Request.Context(), id); err != nil {
		respondError(c, cc.logger, err)
		return
	}

	comment := &models.Comment{
		ItemType: itemType,
		ItemID:   id,
		Name:     strings.TrimSpace(req.Name),
		Text:     strings.TrimSpace(req.Text),
	}
	if user, err := middleware.GetCurrentUser(c); err == nil {
		comment.UserID = &user.ID
		if comment.Name == "" {
			comment.Name = user.Name
		}
	}
	if comment.Name == "" || comment.Text == "" {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name and text are required")
		return
	}

	if err := cc.comments.Create(c.Request.Context(), comment); err != nil {
		respondError(c, cc.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, comment)
}

// uploadIfPresent stores the optional "image" file part and returns its key
func (cc *CatalogController) uploadIfPresent(c *gin.Context, allowVideo bool) (*string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}

	validate := utils.ValidateImageFile
	if allowVideo {
		validate = utils.ValidateMediaFile
	}
	if err := validate(fileHeader); err != nil {
		respondError(c, cc.logger, err)
		return nil, false
	}

	key, err := cc.images.UploadImage(c.Request.Context(), fileHeader)
	if err != nil {
		respondError(c, cc.logger, err)
		return nil, false
	}
	return &key, true
}

func (cc *CatalogController) deleteImage(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := cc.images.DeleteImage(ctx, *key); err != nil {
		cc.logger.Warn("failed to delete stored image", zap.String("key", *key), zap.Error(err))
	}
}
