package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	"github.com/oksasatya/buytoro/pkg/helpers"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
	maxSearchHits   = 500
)

type ProductService struct {
	Repo            repo.ProductRepository
	Media           MediaStore
	Cache           *ProductCache
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESProductsIndex string
}

func NewProductService(products repo.ProductRepository, logger *logrus.Logger) *ProductService {
	return &ProductService{Repo: products, Logger: logger}
}

type ProductQuery struct {
	Keyword  string
	Brand    string
	Page     int
	PageSize int
}

func (q ProductQuery) normalized() ProductQuery {
	q.Keyword = strings.TrimSpace(q.Keyword)
	q.Brand = strings.TrimSpace(q.Brand)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q
}

type ProductPage struct {
	Products []*entity.Product
	Page     int
	Pages    int
	Total    int
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	q = q.normalized()
	if page, ok := s.Cache.GetPage(ctx, q); ok {
		return page, nil
	}

	f := repo.ProductFilter{Brand: q.Brand, Limit: q.PageSize, Offset: (q.Page - 1) * q.PageSize}
	if q.Keyword != "" {
		if ids, ok := s.search(ctx, q.Keyword); ok {
			f.IDs = ids
		} else {
			f.Keyword = q.Keyword
		}
	}

	products, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := (total + q.PageSize - 1) / q.PageSize
	page := &ProductPage{Products: products, Page: q.Page, Pages: pages, Total: total}
	s.Cache.SetPage(ctx, q, page)
	return page, nil
}

// search returns ids ranked by Elasticsearch. ok is false when search is not
// configured or failed, in which case the caller falls back to SQL matching.
func (s *ProductService) search(ctx context.Context, keyword string) ([]string, bool) {
	if s.ES == nil || s.ESProductsIndex == "" {
		return nil, false
	}
	ids, err := helpers.ESMultiMatch(ctx, s.ES, s.ESProductsIndex, keyword, []string{"name^3", "brand^2", "category", "description"}, maxSearchHits)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("keyword", keyword).Warn("product search failed, using sql fallback")
		}
		return nil, false
	}
	return ids, true
}

func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	return s.Repo.Brands(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := s.Cache.GetProduct(ctx, id); ok {
		return p, nil
	}
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Cache.SetProduct(ctx, p)
	return p, nil
}

type ProductInput struct {
	Name          string
	Brand         string
	Category      string
	Description   string
	Price         float64
	DiscountPrice *float64
	CountInStock  int
	// ImageURLs are already hosted images kept alongside uploads.
	ImageURLs []string
}

// Create stores a product. At least one image, uploaded or by URL, is required.
func (s *ProductService) Create(ctx context.Context, in ProductInput, uploads []Upload) (*entity.Product, error) {
	if len(uploads) == 0 && len(in.ImageURLs) == 0 {
		return nil, ErrImageRequired
	}
	if len(uploads) > 0 && s.Media == nil {
		return nil, ErrMediaUnavailable
	}

	p := &entity.Product{
		Name:          strings.TrimSpace(in.Name),
		Brand:         strings.TrimSpace(in.Brand),
		Category:      strings.TrimSpace(in.Category),
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: positiveOrNil(in.DiscountPrice),
		CountInStock:  in.CountInStock,
		Images:        append([]string{}, in.ImageURLs...),
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if len(uploads) > 0 {
		urls, err := s.uploadAll(ctx, p.ID, uploads)
		if err != nil {
			_ = s.Repo.Delete(ctx, p.ID)
			return nil, err
		}
		p.Images = append(p.Images, urls...)
		if err := s.Repo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	s.Cache.Invalidate(ctx, p.ID)
	s.index(ctx, p)
	return p, nil
}

// ProductPatch holds optional updates. Empty strings and zero prices keep
// the stored value; CountInStock is a pointer so that zero can be set.
type ProductPatch struct {
	Name          string
	Brand         string
	Category      string
	Description   string
	Price         float64
	DiscountPrice *float64
	CountInStock  *int
	ImageURLs     []string
}

// Update applies a patch. New images, uploaded or by URL, replace the old set.
func (s *ProductService) Update(ctx context.Context, id string, in ProductPatch, uploads []Upload) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(uploads) > 0 && s.Media == nil {
		return nil, ErrMediaUnavailable
	}

	if v := strings.TrimSpace(in.Name); v != "" {
		p.Name = v
	}
	if v := strings.TrimSpace(in.Brand); v != "" {
		p.Brand = v
	}
	if v := strings.TrimSpace(in.Category); v != "" {
		p.Category = v
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price > 0 {
		p.Price = in.Price
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = positiveOrNil(in.DiscountPrice)
	}
	if in.CountInStock != nil {
		p.CountInStock = *in.CountInStock
	}

	var replaced []string
	if len(uploads) > 0 || len(in.ImageURLs) > 0 {
		urls, err := s.uploadAll(ctx, p.ID, uploads)
		if err != nil {
			return nil, err
		}
		replaced = p.Images
		p.Images = append(append([]string{}, in.ImageURLs...), urls...)
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.deleteImages(ctx, without(replaced, p.Images))
	s.Cache.Invalidate(ctx, p.ID)
	s.index(ctx, p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.deleteImages(ctx, p.Images)
	s.Cache.Invalidate(ctx, id)
	if s.ES != nil && s.ESProductsIndex != "" {
		if err := helpers.ESDelete(ctx, s.ES, s.ESProductsIndex, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
	}
	return nil
}

// Reindex pushes every product to the search index.
func (s *ProductService) Reindex(ctx context.Context) (int, error) {
	if s.ES == nil || s.ESProductsIndex == "" {
		return 0, nil
	}
	products, _, err := s.Repo.List(ctx, repo.ProductFilter{})
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if err := helpers.ESIndex(ctx, s.ES, s.ESProductsIndex, p.ID, productDoc(p)); err != nil {
			return 0, fmt.Errorf("index product %s: %w", p.ID, err)
		}
	}
	return len(products), nil
}

func (s *ProductService) uploadAll(ctx context.Context, productID string, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		ext := strings.ToLower(filepath.Ext(up.Filename))
		objectPath := filepath.ToSlash(filepath.Join("products", productID, uuid.NewString()+ext))
		url, err := s.Media.Upload(ctx, objectPath, up.ContentType, up.Body)
		if err != nil {
			s.deleteImages(ctx, urls)
			return nil, fmt.Errorf("upload product image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *ProductService) deleteImages(ctx context.Context, urls []string) {
	if s.Media == nil {
		return
	}
	for _, u := range urls {
		if err := s.Media.DeleteURL(ctx, u); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("url", u).Warn("delete product image failed")
		}
	}
}

func (s *ProductService) index(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESProductsIndex == "" {
		return
	}
	if err := helpers.ESIndex(ctx, s.ES, s.ESProductsIndex, p.ID, productDoc(p)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
	}
}

func productDoc(p *entity.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"brand":       p.Brand,
		"category":    p.Category,
		"description": p.Description,
		"price":       p.EffectivePrice(),
		"in_stock":    p.CountInStock > 0,
	}
}

func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	d := *v
	return &d
}

// without returns the items of a not present in b.
func without(a, b []string) []string {
	keep := make(map[string]bool, len(b))
	for _, s := range b {
		keep[s] = true
	}
	var out []string
	for _, s := range a {
		if !keep[s] {
			out = append(out, s)
		}
	}
	return out
}
