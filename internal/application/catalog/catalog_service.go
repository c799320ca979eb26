package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogService handles category browsing and admin edits of the catalog
type CatalogService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// ListCategories returns the children of parentID, or the roots when nil
func (s *CatalogService) ListCategories(ctx context.Context, parentID *int64) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*CategoryResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// CategoryPath returns the chain from the root down to id
func (s *CatalogService) CategoryPath(ctx context.Context, id int64) ([]CategoryResponse, error) {
	path, err := s.categoryRepo.Path(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(path), nil
}

// CreateCategory creates a category under an existing parent or as a root
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if req.ParentID != nil {
		if err := s.requireParent(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category, err := catalog.NewCategory(req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created", zap.Int64("category_id", category.ID), zap.String("name", category.Name))
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// UpdateCategory renames and re-parents a category. Moving a category under
// itself or one of its descendants is rejected.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req UpdateCategoryRequest) (*CategoryResponse, error) {
	existing, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, shared.InvalidInput("category cannot be its own parent")
		}
		path, err := s.categoryRepo.Path(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.InvalidInput("parent category not found")
			}
			return nil, err
		}
		for _, ancestor := range path {
			if ancestor.ID == id {
				return nil, shared.InvalidInput("category cannot be moved under its own descendant")
			}
		}
	}

	updated, err := catalog.NewCategory(req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	if err := s.categoryRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(updated)
	return &resp, nil
}

// DeleteCategory deletes a category without subcategories; its products
// become uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

func (s *CatalogService) requireParent(ctx context.Context, parentID int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidInput("parent category not found")
		}
		return err
	}
	return nil
}

// ListProducts returns every product, or only those of categoryID when set
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *int64) ([]ProductResponse, error) {
	var (
		products []catalog.Product
		err      error
	)
	if categoryID != nil {
		products, err = s.productRepo.ListByCategory(ctx, categoryID)
	} else {
		products, err = s.productRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct applies a partial update and returns the stored product
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	patch := req.Patch()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.InvalidInput("category not found")
			}
			return nil, err
		}
	}

	if err := s.productRepo.UpdateFields(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// UpdateStock sets availability of a product at one pickup point
func (s *CatalogService) UpdateStock(ctx context.Context, id int64, point int, inStock bool) error {
	sp := catalog.StockPoint(point)
	if !sp.IsValid() {
		return shared.InvalidInput(fmt.Sprintf("unknown pickup point %d", point))
	}
	if err := s.productRepo.UpdateStock(ctx, id, sp, inStock); err != nil {
		return err
	}
	s.logger.Info("Product stock updated",
		zap.Int64("product_id", id),
		zap.Int("point", point),
		zap.Bool("in_stock", inStock),
	)
	return nil
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}
