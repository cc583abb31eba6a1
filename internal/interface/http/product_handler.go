package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/internal/application"
	"github.com/oksasatya/buytoro/pkg/response"
)

var productStatus = statusTable{
	application.ErrProductNotFound:  http.StatusNotFound,
	application.ErrImageRequired:    http.StatusBadRequest,
	application.ErrMediaUnavailable: http.StatusServiceUnavailable,
}

const maxProductImages = 8

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

// Both multipart forms and JSON bodies bind to these.
type createProductRequest struct {
	Name          string   `form:"name" json:"name" binding:"required,max=200"`
	Brand         string   `form:"brand" json:"brand" binding:"required,max=100"`
	Category      string   `form:"category" json:"category" binding:"required,max=100"`
	Description   string   `form:"description" json:"description"`
	Price         float64  `form:"price" json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `form:"discountPrice" json:"discountPrice" binding:"omitempty,money"`
	CountInStock  int      `form:"countInStock" json:"countInStock" binding:"gte=0"`
	ImageURLs     []string `form:"imageUrls" json:"imageUrls" binding:"omitempty,dive,url"`
}

type updateProductRequest struct {
	Name          string   `form:"name" json:"name" binding:"omitempty,max=200"`
	Brand         string   `form:"brand" json:"brand" binding:"omitempty,max=100"`
	Category      string   `form:"category" json:"category" binding:"omitempty,max=100"`
	Description   string   `form:"description" json:"description"`
	Price         float64  `form:"price" json:"price" binding:"money"`
	DiscountPrice *float64 `form:"discountPrice" json:"discountPrice" binding:"omitempty,money"`
	CountInStock  *int     `form:"countInStock" json:"countInStock" binding:"omitempty,gte=0"`
	ImageURLs     []string `form:"imageUrls" json:"imageUrls" binding:"omitempty,dive,url"`
}

// List GET /api/products?keyword=&brand=&page=&pageSize=
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	res, err := h.Svc.List(c.Request.Context(), application.ProductQuery{
		Keyword:  c.Query("keyword"),
		Brand:    c.Query("brand"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	response.Success(c, http.StatusOK, productPageResponse{
		Products: toProducts(res.Products),
		Page:     res.Page,
		Pages:    res.Pages,
		Total:    res.Total,
	}, "products", nil)
}

func (h *ProductHandler) Brands(c *gin.Context) {
	brands, err := h.Svc.Brands(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	if brands == nil {
		brands = []string{}
	}
	response.Success(c, http.StatusOK, brands, "brands", nil)
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toProduct(p), "product", nil)
}

// Create POST /api/products (admin, multipart field "images")
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c, err)
		return
	}
	uploads, closeAll, err := formImages(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer closeAll()

	p, err := h.Svc.Create(c.Request.Context(), application.ProductInput{
		Name:          req.Name,
		Brand:         req.Brand,
		Category:      req.Category,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		CountInStock:  req.CountInStock,
		ImageURLs:     req.ImageURLs,
	}, uploads)
	if err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	response.Success(c, http.StatusCreated, toProduct(p), "product created", nil)
}

// Update PUT /api/products/:id (admin, multipart or JSON)
func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c, err)
		return
	}
	uploads, closeAll, err := formImages(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer closeAll()

	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.ProductPatch{
		Name:          req.Name,
		Brand:         req.Brand,
		Category:      req.Category,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		CountInStock:  req.CountInStock,
		ImageURLs:     req.ImageURLs,
	}, uploads)
	if err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toProduct(p), "product updated", nil)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "product removed", nil)
}

// Reindex rebuilds the search index from the catalog.
func (h *ProductHandler) Reindex(c *gin.Context) {
	n, err := h.Svc.Reindex(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, productStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"indexed": n}, "search index rebuilt", nil)
}

// formImages opens the "images" files of a multipart request. JSON requests
// carry none.
func formImages(c *gin.Context) ([]application.Upload, func(), error) {
	noop := func() {}
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, errors.New("invalid multipart form")
	}
	files := form.File["images"]
	if len(files) > maxProductImages {
		return nil, noop, fmt.Errorf("too many images, at most %d", maxProductImages)
	}

	var closers []io.Closer
	closeAll := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}
	uploads := make([]application.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("cannot read image %s", fh.Filename)
		}
		closers = append(closers, f)
		uploads = append(uploads, application.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
	}
	return uploads, closeAll, nil
}
